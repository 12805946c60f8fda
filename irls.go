package glmstar

import (
	"context"
	"fmt"
	"math"
)

// irlsState enumerates the phases of the outer fitting loop.
type irlsState int

const (
	stateInitializing irlsState = iota
	stateLinearizing
	statePathFitting
	stateConverged
	stateMaxIterReached
)

// maxStepHalvings caps the number of times an outer step is halved back
// toward the previous iterate when it fails to decrease the penalized
// objective.
const maxStepHalvings = 25

// fitState is the mutable working state of a fit: one coefficient vector,
// intercept, deviance, and set of diagnostics per penalty weight.  It is
// owned exclusively by the running fit and frozen into a FitResult when the
// fit completes.
type fitState struct {

	// Number of path entries still in play; the path runner may shorten
	// this when the deviance explained saturates.
	nlam int

	coef     [][]float64
	icept    []float64
	dev      []float64
	obj      []float64
	sweeps   []int
	stepConv []bool
	visited  []bool
}

func newFitState(nlam, nvar int) *fitState {

	fs := &fitState{
		nlam:     nlam,
		coef:     make([][]float64, nlam),
		icept:    make([]float64, nlam),
		dev:      make([]float64, nlam),
		obj:      make([]float64, nlam),
		sweeps:   make([]int, nlam),
		stepConv: make([]bool, nlam),
		visited:  make([]bool, nlam),
	}
	for k := range fs.coef {
		fs.coef[k] = make([]float64, nvar)
	}

	return fs
}

// irlsFitter runs the outer iteratively reweighted least squares loop around
// the path runner.  For the Gaussian family with the identity link the loop
// degenerates to a single linearize-and-fit pass.
type irlsFitter struct {
	m    *ElasticNet
	ctx  context.Context
	eng  *cdEngine
	path *pathRunner

	state *fitState

	nullDev   float64
	nullIcept float64

	// Working buffers, recomputed each linearization and discarded at the
	// end of the fit.
	eta    []float64
	mn     []float64
	lderiv []float64
	va     []float64
	zi     []float64
	wi     []float64

	// Snapshot of the previous iterate at the current path step, used by
	// the step-halving guard.
	oldCoef []float64

	st             irlsState
	converged      bool
	maxIterReached bool
	partial        bool
	warnings       []string
}

func newIRLSFitter(m *ElasticNet, ctx context.Context, eng *cdEngine, path *pathRunner) *irlsFitter {

	n := len(m.y)

	return &irlsFitter{
		m:       m,
		ctx:     ctx,
		eng:     eng,
		path:    path,
		state:   newFitState(len(path.lambdas), len(m.xcols)),
		eta:     make([]float64, n),
		mn:      make([]float64, n),
		lderiv:  make([]float64, n),
		va:      make([]float64, n),
		zi:      make([]float64, n),
		wi:      make([]float64, n),
		oldCoef: make([]float64, len(m.xcols)),
		st:      stateInitializing,
	}
}

func (it *irlsFitter) canceled() bool {
	return it.ctx != nil && it.ctx.Err() != nil
}

// run executes the outer loop and returns the final working state.
func (it *irlsFitter) run() *fitState {

	m := it.m
	fs := it.state

	// Initializing: the intercept starts at the link of the mean response,
	// with all coefficients zero.
	q := m.fam.nullMean(m.y, m.wgt)
	lp := []float64{0}
	m.link.Link([]float64{q}, lp)
	it.nullIcept = lp[0]
	for k := range fs.icept {
		fs.icept[k] = it.nullIcept
	}

	constMean(it.mn, q, len(m.y))
	it.nullDev = m.fam.Deviance(m.y, it.mn, m.wgt)

	gaussian := m.fam.TypeCode == GaussianFamily && m.link.TypeCode == IdentityLink

	prevTotal := math.Inf(1)

	for iter := 0; iter < m.maxOuter; iter++ {

		it.st = statePathFitting
		if it.path.runPass(it, iter) {
			it.partial = true
			break
		}

		var total float64
		for k := 0; k < fs.nlam; k++ {
			total += fs.dev[k]
		}

		if gaussian {
			// No reweighting needed: a single pass is exact.
			it.st = stateConverged
			it.converged = true
			break
		}

		if math.Abs(total-prevTotal)/(0.1+math.Abs(total)) < m.irlsTol {
			it.st = stateConverged
			it.converged = true
			break
		}
		prevTotal = total

		if m.log != nil {
			m.log.Printf("outer iteration %d: deviance=%.10f\n", iter+1, total)
		}
	}

	if !it.converged && !it.partial {
		it.st = stateMaxIterReached
		it.maxIterReached = true
		it.warnf("outer loop did not converge within %d iterations", m.maxOuter)
	}

	if it.eng.sawDegenerate {
		it.warnf("one or more covariates have zero weighted norm and were skipped")
	}

	return fs
}

// fitStep fits path entry k at the current linearization, warm-started from
// the coefficients already stored in the state.
func (it *irlsFitter) fitStep(k, iter int) {

	m := it.m
	fs := it.state
	coef := fs.coef[k]
	lam := it.path.lambdas[k]

	guard := fs.visited[k] && m.fam.TypeCode != GaussianFamily
	var oldIcept, oldDev, oldObj float64
	if guard {
		copy(it.oldCoef, coef)
		oldIcept = fs.icept[k]
		oldDev = fs.dev[k]
		oldObj = fs.obj[k]
	}

	// Linearizing: working response and weights at the current fit.
	it.st = stateLinearizing
	it.linearize(coef, fs.icept[k])

	it.st = statePathFitting
	it.eng.setData(it.zi, it.wi)
	res := it.eng.solve(coef, &fs.icept[k], lam)

	fs.sweeps[k] += res.sweeps
	fs.stepConv[k] = res.converged
	if !res.converged {
		it.warnf("lambda[%d]=%.6g: coordinate descent reached the sweep cap without converging", k, lam)
	}

	dev, obj := it.evaluate(coef, fs.icept[k], lam)

	if guard && !(obj <= oldObj+1e-10) {
		// The reweighted step overshot; halve back toward the previous
		// iterate until the penalized objective stops increasing.
		ok := false
		for h := 0; h < maxStepHalvings; h++ {
			for j := range coef {
				coef[j] = (coef[j] + it.oldCoef[j]) / 2
			}
			fs.icept[k] = (fs.icept[k] + oldIcept) / 2
			dev, obj = it.evaluate(coef, fs.icept[k], lam)
			if obj <= oldObj+1e-10 {
				ok = true
				break
			}
		}
		if !ok {
			copy(coef, it.oldCoef)
			fs.icept[k] = oldIcept
			dev, obj = oldDev, oldObj
			it.warnf("lambda[%d]=%.6g: step did not decrease the objective and was reverted", k, lam)
		}
	}

	fs.dev[k] = dev
	fs.obj[k] = obj
	fs.visited[k] = true
}

// linearize computes the working response zi and weights wi at the given
// coefficients:
//
//	z = eta + g'(mu)*(y - mu) - offset
//	w = wgt / (g'(mu)^2 * V(mu))
func (it *irlsFitter) linearize(coef []float64, icept float64) {

	m := it.m

	m.linpred(coef, icept, it.eta)
	m.link.InvLink(it.eta, it.mn)
	m.fam.clipMean(it.mn)

	m.link.Deriv(it.mn, it.lderiv)
	m.vari.Var(it.mn, it.va)

	for i, y := range m.y {
		it.zi[i] = it.eta[i] + it.lderiv[i]*(y-it.mn[i])
		d := it.lderiv[i] * it.lderiv[i] * it.va[i]
		if m.wgt != nil {
			it.wi[i] = m.wgt[i] / d
		} else {
			it.wi[i] = 1 / d
		}
	}

	if m.off != nil {
		for i := range it.zi {
			it.zi[i] -= m.off[i]
		}
	}
}

// evaluate returns the deviance and the penalized objective at the given fit.
func (it *irlsFitter) evaluate(coef []float64, icept, lam float64) (float64, float64) {

	m := it.m

	m.linpred(coef, icept, it.eta)
	m.link.InvLink(it.eta, it.mn)
	m.fam.clipMean(it.mn)

	dev := m.fam.Deviance(m.y, it.mn, m.wgt)
	obj := dev/(2*m.wsum) + lam*m.pen.Value(coef)

	return dev, obj
}

func (it *irlsFitter) warnf(format string, args ...interface{}) {
	it.warnings = append(it.warnings, fmt.Sprintf(format, args...))
}

func constMean(mn []float64, q float64, n int) {
	for i := 0; i < n; i++ {
		mn[i] = q
	}
}
