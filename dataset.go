package glmstar

import (
	"gonum.org/v1/gonum/mat"

	"github.com/kshedden/dstream/dstream"
)

// FromDstream extracts a design matrix, response, and optional weight and
// offset vectors from a column-oriented data stream.  The variable named
// yname is the response; weightname and offsetname may be empty strings if
// not present.  All remaining variables become covariates, in the stream's
// column order.  The stream is fully materialized, so it must fit in memory.
func FromDstream(da dstream.Dstream, yname, weightname, offsetname string) (*mat.Dense, []float64, []float64, []float64, error) {

	ypos, wpos, opos := -1, -1, -1
	var xpos []int

	for k, na := range da.Names() {
		switch na {
		case yname:
			ypos = k
		case weightname:
			wpos = k
		case offsetname:
			opos = k
		default:
			xpos = append(xpos, k)
		}
	}

	if ypos == -1 {
		return nil, nil, nil, nil, configErrorf("glmstar: outcome variable '%s' not found", yname)
	}
	if wpos == -1 && weightname != "" {
		return nil, nil, nil, nil, configErrorf("glmstar: weight variable '%s' not found", weightname)
	}
	if opos == -1 && offsetname != "" {
		return nil, nil, nil, nil, configErrorf("glmstar: offset variable '%s' not found", offsetname)
	}

	var y, wgt, off []float64
	xcols := make([][]float64, len(xpos))

	da.Reset()
	for da.Next() {
		y = append(y, da.GetPos(ypos).([]float64)...)
		if wpos != -1 {
			wgt = append(wgt, da.GetPos(wpos).([]float64)...)
		}
		if opos != -1 {
			off = append(off, da.GetPos(opos).([]float64)...)
		}
		for j, k := range xpos {
			xcols[j] = append(xcols[j], da.GetPos(k).([]float64)...)
		}
	}

	x := mat.NewDense(len(y), len(xpos), nil)
	for j, col := range xcols {
		x.SetCol(j, col)
	}

	return x, y, wgt, off, nil
}
