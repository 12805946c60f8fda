package glmstar

import (
	"math"
)

// defaultNumLambda is the default length of an automatically generated
// penalty weight sequence.
const defaultNumLambda = 100

// alphaFloor is used in place of alpha when deriving the penalty weight grid
// for near-ridge fits, where the analytic lambda-max is unbounded.
const alphaFloor = 1e-3

// lambdaMax returns the smallest penalty weight at which every penalized
// coefficient is exactly zero.  It is the maximum absolute gradient of the
// weighted least squares loss at the null model, scaled by the L1 share of
// the penalty.  The working response z, weights w, and intercept icept
// describe the linearization at the null model.
func lambdaMax(x [][]float64, z, w []float64, icept float64, pen *Penalty) float64 {

	var ws float64
	for _, v := range w {
		ws += v
	}

	a := pen.Alpha()
	if a < alphaFloor {
		a = alphaFloor
	}

	var lmax float64
	for j, xj := range x {
		vp := pen.Factor(j)
		if vp <= 0 {
			continue
		}
		var u float64
		for i := range xj {
			u += w[i] * xj[i] * (z[i] - icept)
		}
		u = math.Abs(u) / (ws * a * vp)
		if u > lmax {
			lmax = u
		}
	}

	return lmax
}

// lambdaGrid returns nlam log-spaced penalty weights decreasing from lmax to
// lmax*minRatio.
func lambdaGrid(lmax, minRatio float64, nlam int) []float64 {

	lam := make([]float64, nlam)
	lam[0] = lmax
	if nlam == 1 {
		return lam
	}

	step := math.Log(minRatio) / float64(nlam-1)
	for k := 1; k < nlam; k++ {
		lam[k] = lmax * math.Exp(float64(k)*step)
	}

	return lam
}

// pathRunner drives the coordinate descent engine across a decreasing
// sequence of penalty weights.  Each path step is warm-started from the
// previous step's solution.  For automatically generated grids the path is
// cut short once the fraction of null deviance explained saturates; the
// result is a shorter path, not an error.
type pathRunner struct {
	lambdas []float64

	// True when the grid was generated internally rather than supplied by
	// the caller.  Early termination applies only to generated grids.
	auto bool

	// Stop when the deviance ratio exceeds devMax.
	devMax float64

	// Stop when a path step improves the deviance ratio by less than fdev
	// in relative terms.
	fdev float64
}

// runPass performs one pass of per-lambda fits over the (possibly already
// truncated) path.  On the first pass (iter 0) it applies the early
// termination rules and warm-starts each step from its predecessor.  It
// returns true if the pass was interrupted by cancellation.
func (pr *pathRunner) runPass(it *irlsFitter, iter int) bool {

	fs := it.state

	for k := 0; k < fs.nlam; k++ {

		// Cancellation is coarse-grained: only between path steps.
		if it.canceled() {
			if iter == 0 {
				fs.nlam = k
			}
			return true
		}

		if iter == 0 && k > 0 {
			copy(fs.coef[k], fs.coef[k-1])
			fs.icept[k] = fs.icept[k-1]
		}

		it.fitStep(k, iter)

		if iter == 0 && pr.auto && k > 0 {
			dr0 := 1 - fs.dev[k-1]/it.nullDev
			dr1 := 1 - fs.dev[k]/it.nullDev
			if dr1 > pr.devMax || dr1-dr0 < pr.fdev*dr1 {
				fs.nlam = k + 1
				return false
			}
		}
	}

	return false
}
