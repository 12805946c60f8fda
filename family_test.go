package glmstar

import (
	"errors"
	"math"
	"testing"
)

func TestLinkInverses(t *testing.T) {

	for _, c := range []struct {
		link LinkType
		vals []float64
	}{
		{IdentityLink, []float64{-2, 0, 3}},
		{LogLink, []float64{0.1, 1, 5}},
		{LogitLink, []float64{0.05, 0.5, 0.9}},
		{CloglogLink, []float64{0.05, 0.5, 0.9}},
		{RecipLink, []float64{0.5, 1, 4}},
	} {
		link := NewLink(c.link)
		lp := make([]float64, len(c.vals))
		mn := make([]float64, len(c.vals))

		link.Link(c.vals, lp)
		link.InvLink(lp, mn)

		for i := range c.vals {
			if !scalarClose(mn[i], c.vals[i], 1e-10) {
				t.Errorf("%s: invlink(link(%f)) = %f", link.Name, c.vals[i], mn[i])
			}
		}
	}
}

func TestLinkDeriv(t *testing.T) {

	// Compare the analytic derivative of each link to a central
	// difference.
	for _, c := range []struct {
		link LinkType
		vals []float64
	}{
		{LogLink, []float64{0.5, 1, 3}},
		{LogitLink, []float64{0.2, 0.5, 0.8}},
		{CloglogLink, []float64{0.2, 0.5, 0.8}},
		{RecipLink, []float64{0.5, 1, 2}},
	} {
		link := NewLink(c.link)
		de := make([]float64, len(c.vals))
		link.Deriv(c.vals, de)

		const h = 1e-6
		hi := make([]float64, len(c.vals))
		lo := make([]float64, len(c.vals))
		vh := make([]float64, len(c.vals))
		vl := make([]float64, len(c.vals))
		for i, v := range c.vals {
			vh[i] = v + h
			vl[i] = v - h
		}
		link.Link(vh, hi)
		link.Link(vl, lo)

		for i := range c.vals {
			nd := (hi[i] - lo[i]) / (2 * h)
			if !scalarClose(de[i], nd, 1e-4) {
				t.Errorf("%s deriv at %f: analytic %f, numeric %f", link.Name, c.vals[i], de[i], nd)
			}
		}
	}
}

func TestVarianceFuncs(t *testing.T) {

	mn := []float64{0.25, 0.5}
	v := make([]float64, 2)

	NewVariance(ConstantVar).Var(mn, v)
	if v[0] != 1 || v[1] != 1 {
		t.Errorf("constant variance: %v", v)
	}

	NewVariance(IdentityVar).Var(mn, v)
	if v[0] != 0.25 || v[1] != 0.5 {
		t.Errorf("identity variance: %v", v)
	}

	NewVariance(BinomialVar).Var(mn, v)
	if !scalarClose(v[0], 0.1875, 1e-12) || !scalarClose(v[1], 0.25, 1e-12) {
		t.Errorf("binomial variance: %v", v)
	}

	NewVariance(SquaredVar).Var(mn, v)
	if !scalarClose(v[0], 0.0625, 1e-12) {
		t.Errorf("squared variance: %v", v)
	}
}

func TestDevianceAtData(t *testing.T) {

	// The deviance is zero (to within the clipping band) when the fitted
	// means equal the data.
	y := []float64{1, 2, 3}
	fam := NewFamily(PoissonFamily)
	if dev := fam.Deviance(y, y, nil); math.Abs(dev) > 1e-10 {
		t.Errorf("Poisson deviance at saturation: %f", dev)
	}

	fam = NewFamily(GammaFamily)
	if dev := fam.Deviance(y, y, nil); math.Abs(dev) > 1e-10 {
		t.Errorf("Gamma deviance at saturation: %f", dev)
	}

	yb := []float64{0, 1, 1}
	mb := []float64{pmin, 1 - pmin, 1 - pmin}
	fam = NewFamily(BinomialFamily)
	if dev := fam.Deviance(yb, mb, nil); math.Abs(dev) > 1e-6 {
		t.Errorf("Binomial deviance at saturation: %f", dev)
	}
}

func TestGaussianDeviance(t *testing.T) {

	y := []float64{1, 2, 4}
	mn := []float64{1, 1, 1}
	w := []float64{1, 2, 1}

	fam := NewFamily(GaussianFamily)
	if dev := fam.Deviance(y, mn, nil); !scalarClose(dev, 10, 1e-12) {
		t.Errorf("unweighted Gaussian deviance: %f", dev)
	}
	if dev := fam.Deviance(y, mn, w); !scalarClose(dev, 11, 1e-12) {
		t.Errorf("weighted Gaussian deviance: %f", dev)
	}
}

func TestValidateResponse(t *testing.T) {

	var derr DomainError

	err := NewFamily(PoissonFamily).ValidateResponse([]float64{1, -1, 2})
	if !errors.As(err, &derr) {
		t.Errorf("negative Poisson count not rejected")
	}

	err = NewFamily(BinomialFamily).ValidateResponse([]float64{0, 1, 2})
	if !errors.As(err, &derr) {
		t.Errorf("out of range Binomial response not rejected")
	}

	err = NewFamily(GammaFamily).ValidateResponse([]float64{1, 0})
	if !errors.As(err, &derr) {
		t.Errorf("nonpositive Gamma response not rejected")
	}

	err = NewFamily(GaussianFamily).ValidateResponse([]float64{1, math.NaN()})
	if !errors.As(err, &derr) {
		t.Errorf("NaN response not rejected")
	}

	if err := NewFamily(GaussianFamily).ValidateResponse([]float64{-5, 0, 5}); err != nil {
		t.Errorf("valid Gaussian response rejected: %v", err)
	}
}

func TestNullMean(t *testing.T) {

	y := []float64{0, 1, 1}
	w := []float64{1, 1, 2}

	fam := NewFamily(BinomialFamily)
	if q := fam.nullMean(y, w); !scalarClose(q, 0.75, 1e-12) {
		t.Errorf("weighted null mean: %f", q)
	}
	if q := fam.nullMean(y, nil); !scalarClose(q, 2.0/3, 1e-12) {
		t.Errorf("unweighted null mean: %f", q)
	}

	// An all-zero Binomial response is clipped away from the boundary.
	if q := fam.nullMean([]float64{0, 0}, nil); q < pmin {
		t.Errorf("null mean not clipped: %g", q)
	}
}

func TestClipMean(t *testing.T) {

	fam := NewFamily(BinomialFamily)
	mn := []float64{-0.1, 0.5, 1.2}
	fam.clipMean(mn)
	if mn[0] != pmin || mn[1] != 0.5 || mn[2] != 1-pmin {
		t.Errorf("binomial clip: %v", mn)
	}

	fam = NewFamily(PoissonFamily)
	mn = []float64{-1, 2}
	fam.clipMean(mn)
	if mn[0] != pmin || mn[1] != 2 {
		t.Errorf("poisson clip: %v", mn)
	}
}

func TestIsValidLink(t *testing.T) {

	fam := NewFamily(BinomialFamily)
	if !fam.IsValidLink(NewLink(LogitLink)) {
		t.Errorf("logit rejected for binomial")
	}
	if fam.IsValidLink(NewLink(IdentityLink)) {
		t.Errorf("identity accepted for binomial")
	}
}
