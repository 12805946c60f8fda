package glmstar

import (
	"gonum.org/v1/gonum/floats"
)

// cdEngine performs cyclic coordinate descent on a weighted least squares
// problem with an elastic net penalty:
//
//	min over (b0, b) of
//	  (1/(2*ws)) * sum_i w_i*(z_i - b0 - x_i.b)^2 + lam * pen(b)
//
// where ws is the sum of the weights.  The engine owns its residual buffer,
// which is updated in place after every coordinate step; the residual is
// recomputed from scratch only when a new working response arrives.
type cdEngine struct {

	// Covariate columns, read-only.
	x [][]float64

	pen *Penalty

	// Convergence tolerance on the weighted squared coefficient change.
	tol float64

	// Cap on the number of sweeps in a single solve.
	maxSweeps int

	// Current working response and weights, set per solve.
	z []float64
	w []float64

	// Sum of the working weights.
	ws float64

	// sx[j] = (1/ws) * sum_i w_i*x_ij^2
	sx []float64

	// The running residual, z - b0 - X*b.
	r []float64

	// Coordinates with sx of zero are skipped.
	degenerate []bool

	// Set when a degenerate coordinate is first seen.
	sawDegenerate bool
}

// cdStepResult reports the outcome of one solve at a fixed penalty weight.
type cdStepResult struct {
	sweeps    int
	converged bool
}

func newCDEngine(x [][]float64, pen *Penalty, tol float64, maxSweeps int) *cdEngine {

	n := 0
	if len(x) > 0 {
		n = len(x[0])
	}

	return &cdEngine{
		x:          x,
		pen:        pen,
		tol:        tol,
		maxSweeps:  maxSweeps,
		sx:         make([]float64, len(x)),
		r:          make([]float64, n),
		degenerate: make([]bool, len(x)),
	}
}

// setData installs a new working response and weights, recomputing the
// weighted column norms.  It must be called before solve whenever z or w have
// changed.
func (cd *cdEngine) setData(z, w []float64) {

	cd.z = z
	cd.w = w
	cd.ws = floats.Sum(w)

	for j, xj := range cd.x {
		var s float64
		for i := range xj {
			s += w[i] * xj[i] * xj[i]
		}
		cd.sx[j] = s / cd.ws
		if cd.sx[j] <= 0 {
			cd.degenerate[j] = true
			cd.sawDegenerate = true
		} else {
			cd.degenerate[j] = false
		}
	}
}

// solve runs coordinate descent at the penalty weight lam, updating coef and
// icept in place.  The starting values of coef and icept are the warm start.
func (cd *cdEngine) solve(coef []float64, icept *float64, lam float64) cdStepResult {

	// Rebuild the residual at the warm start point.
	copy(cd.r, cd.z)
	floats.AddConst(-*icept, cd.r)
	for j, b := range coef {
		if b != 0 {
			floats.AddScaled(cd.r, -b, cd.x[j])
		}
	}

	var active []int
	full := true
	sweeps := 0
	converged := false

	for sweeps < cd.maxSweeps {

		maxd := cd.interceptStep(icept)

		if full {
			for j := range cd.x {
				if d := cd.coordStep(j, coef, lam); d > maxd {
					maxd = d
				}
			}
		} else {
			for _, j := range active {
				if d := cd.coordStep(j, coef, lam); d > maxd {
					maxd = d
				}
			}
		}
		sweeps++

		if maxd < cd.tol {
			if full {
				converged = true
				break
			}
			// The active set has converged; verify against the
			// full coordinate set before stopping.
			full = true
			continue
		}

		if full {
			active = active[:0]
			for j, b := range coef {
				if b != 0 {
					active = append(active, j)
				}
			}
			full = false
		}
	}

	return cdStepResult{sweeps: sweeps, converged: converged}
}

// interceptStep refits the intercept to the current residual and returns the
// squared change.
func (cd *cdEngine) interceptStep(icept *float64) float64 {

	var u float64
	for i, r := range cd.r {
		u += cd.w[i] * r
	}
	d := u / cd.ws

	*icept += d
	floats.AddConst(-d, cd.r)

	return d * d
}

// coordStep updates coefficient j with a single proximal coordinate step and
// returns the weighted squared change.  The residual is adjusted in place.
func (cd *cdEngine) coordStep(j int, coef []float64, lam float64) float64 {

	if cd.degenerate[j] {
		return 0
	}

	xj := cd.x[j]
	bj := coef[j]

	var u float64
	for i, r := range cd.r {
		u += cd.w[i] * xj[i] * r
	}
	u = u/cd.ws + cd.sx[j]*bj

	nb := cd.pen.Prox(u/cd.sx[j], 1/cd.sx[j], lam, j)
	if nb == bj {
		return 0
	}

	floats.AddScaled(cd.r, bj-nb, xj)
	coef[j] = nb

	d := nb - bj
	return cd.sx[j] * d * d
}
