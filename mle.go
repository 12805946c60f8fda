package glmstar

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// FitReference computes the unpenalized maximum likelihood fit of the model
// using gradient optimization.  It returns the intercept and coefficients on
// the original covariate scale.  The reference fit is the limit of the
// regularization path as the penalty weight approaches zero, and is useful
// as a diagnostic check of path results on well-conditioned designs.
func (m *ElasticNet) FitReference() (float64, []float64, error) {

	if err := m.prepare(); err != nil {
		return 0, nil, err
	}

	n := len(m.y)
	nvar := len(m.xcols)

	eta := make([]float64, n)
	mn := make([]float64, n)
	lderiv := make([]float64, n)
	va := make([]float64, n)
	fac := make([]float64, n)

	// th[0] is the intercept, th[1:] are the coefficients on the scaled
	// covariates.
	negll := func(th []float64) float64 {
		m.linpred(th[1:], th[0], eta)
		m.link.InvLink(eta, mn)
		m.fam.clipMean(mn)
		return -m.fam.LogLike(m.y, mn, m.wgt)
	}

	grad := func(g, th []float64) {
		m.linpred(th[1:], th[0], eta)
		m.link.InvLink(eta, mn)
		m.fam.clipMean(mn)
		m.link.Deriv(mn, lderiv)
		m.vari.Var(mn, va)

		for i, y := range m.y {
			fac[i] = (y - mn[i]) / (lderiv[i] * va[i])
			if m.wgt != nil {
				fac[i] *= m.wgt[i]
			}
		}

		g[0] = -floats.Sum(fac)
		for j, xj := range m.xcols {
			g[j+1] = -floats.Dot(fac, xj)
		}
	}

	p := optimize.Problem{Func: negll, Grad: grad}

	settings := &optimize.Settings{GradientThreshold: 1e-6}
	start := make([]float64, nvar+1)

	rslt, err := optimize.Minimize(p, start, settings, &optimize.BFGS{})
	if err != nil {
		return 0, nil, err
	}
	if err := rslt.Status.Err(); err != nil {
		return 0, nil, err
	}

	coef := make([]float64, nvar)
	for j := range coef {
		coef[j] = rslt.X[j+1] / m.xn[j]
	}

	return rslt.X[0], coef, nil
}
