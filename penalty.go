package glmstar

import "math"

// Penalty represents an elastic net penalty: a blend of L1 and L2
// regularization controlled by the mixing parameter alpha, with optional
// per-coefficient penalty factors.  Alpha=1 gives the lasso and alpha=0 gives
// ridge regression.
type Penalty struct {

	// The L1/L2 mixing parameter, in [0, 1].
	alpha float64

	// Per-coefficient scaling of the penalty weight.  A factor of zero
	// leaves the coefficient unpenalized.  If nil, all factors are 1.
	factors []float64
}

// NewPenalty returns an elastic net penalty with the given mixing parameter.
// The factors argument may be nil, in which case every coefficient is
// penalized equally.
func NewPenalty(alpha float64, factors []float64) *Penalty {
	return &Penalty{alpha: alpha, factors: factors}
}

// Alpha returns the L1/L2 mixing parameter.
func (pen *Penalty) Alpha() float64 { return pen.alpha }

// Factor returns the penalty scaling factor for coefficient j.
func (pen *Penalty) Factor(j int) float64 {
	if pen.factors == nil {
		return 1
	}
	return pen.factors[j]
}

// softThreshold applies the soft thresholding operator with threshold t >= 0.
func softThreshold(z, t float64) float64 {
	if z > t {
		return z - t
	}
	if z < -t {
		return z + t
	}
	return 0
}

// Prox returns the proximal map of the penalty for coefficient j at the
// point z, with the given step size and penalty weight lam:
//
//	sign(z) * max(|z| - lam*vp*alpha*step, 0) / (1 + lam*vp*(1-alpha)*step)
//
// where vp is the penalty factor for coefficient j.  Prox is a pure function.
func (pen *Penalty) Prox(z, step, lam float64, j int) float64 {
	t := lam * pen.Factor(j)
	b := softThreshold(z, pen.alpha*t*step)
	return b / (1 + (1-pen.alpha)*t*step)
}

// Value returns the penalty value at the given coefficient vector, excluding
// the overall weight lam:
//
//	sum_j vp_j * (alpha*|b_j| + (1-alpha)*b_j^2/2)
func (pen *Penalty) Value(coef []float64) float64 {

	var v float64
	for j, b := range coef {
		v += pen.Factor(j) * (pen.alpha*math.Abs(b) + (1-pen.alpha)*b*b/2)
	}

	return v
}
