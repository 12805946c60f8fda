package glmstar

import (
	"bytes"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FitResult holds the fitted coefficient path and its diagnostics.  All
// fields are plain arrays and scalars so that callers can serialize the
// result however they choose.  A FitResult is immutable once returned.
type FitResult struct {

	// The name of the family that was fit.
	FamilyName string

	// The L1/L2 mixing parameter.
	Alpha float64

	// The penalty weights, in strictly decreasing order.  May be shorter
	// than requested if the path was cut short.
	Lambdas []float64

	// Coefs[k] holds the fitted coefficients at Lambdas[k], on the
	// original covariate scale.
	Coefs [][]float64

	// The fitted intercepts, one per penalty weight.
	Intercepts []float64

	// The model deviance at each penalty weight.
	Deviance []float64

	// The fraction of the null deviance explained at each penalty weight.
	DevRatio []float64

	// The number of nonzero coefficients at each penalty weight.
	NumNonzero []int

	// Total coordinate descent sweeps spent at each penalty weight.
	Sweeps []int

	// Whether the final coordinate descent solve at each penalty weight
	// converged within the sweep cap.
	StepConverged []bool

	// The deviance of the intercept-only model.
	NullDeviance float64

	// Whether the outer loop converged.
	Converged bool

	// Set when the outer iteration cap was reached.  The result is still
	// usable; this is a diagnostic, not an error.
	MaxIterReached bool

	// Set when the fit was cancelled and the result covers only part of
	// the requested path.
	Partial bool

	// Human-readable numerical diagnostics accumulated during the fit.
	Warnings []string

	fam  *Family
	link *Link
}

// LambdaSelector identifies a point on the penalty path, either by position
// or by penalty weight.
type LambdaSelector struct {
	index   int
	lambda  float64
	byValue bool
}

// AtIndex selects path entry i.
func AtIndex(i int) LambdaSelector {
	return LambdaSelector{index: i}
}

// AtLambda selects the penalty weight v.  If v falls between two path
// entries, the coefficients are linearly interpolated; values outside the
// path range are clamped to its endpoints.
func AtLambda(v float64) LambdaSelector {
	return LambdaSelector{lambda: v, byValue: true}
}

// coefAt returns the intercept and coefficients at the selected point on the
// path.  The returned slice must not be modified by the caller.
func (r *FitResult) coefAt(sel LambdaSelector) (float64, []float64, error) {

	if !sel.byValue {
		if sel.index < 0 || sel.index >= len(r.Lambdas) {
			return 0, nil, configErrorf("glmstar: lambda index %d out of range [0, %d)", sel.index, len(r.Lambdas))
		}
		return r.Intercepts[sel.index], r.Coefs[sel.index], nil
	}

	if len(r.Lambdas) == 0 {
		return 0, nil, configErrorf("glmstar: result contains no path entries")
	}

	v := sel.lambda
	if v >= r.Lambdas[0] {
		return r.Intercepts[0], r.Coefs[0], nil
	}
	last := len(r.Lambdas) - 1
	if v <= r.Lambdas[last] {
		return r.Intercepts[last], r.Coefs[last], nil
	}

	// v lies strictly between two path entries; interpolate linearly in
	// lambda.
	k := searchLambda(r.Lambdas, v)
	l0, l1 := r.Lambdas[k-1], r.Lambdas[k]
	f := (v - l1) / (l0 - l1)

	coef := make([]float64, len(r.Coefs[k]))
	for j := range coef {
		coef[j] = f*r.Coefs[k-1][j] + (1-f)*r.Coefs[k][j]
	}
	icept := f*r.Intercepts[k-1] + (1-f)*r.Intercepts[k]

	return icept, coef, nil
}

// PredictLinear returns the linear predictor for the rows of x at the
// selected point on the path.  Any offset must be added by the caller.
func (r *FitResult) PredictLinear(x mat.Matrix, sel LambdaSelector) ([]float64, error) {

	icept, coef, err := r.coefAt(sel)
	if err != nil {
		return nil, err
	}

	n, p := x.Dims()
	if p != len(coef) {
		return nil, configErrorf("glmstar: prediction matrix has %d columns, model has %d", p, len(coef))
	}

	eta := make([]float64, n)
	for i := 0; i < n; i++ {
		v := icept
		for j := 0; j < p; j++ {
			v += coef[j] * x.At(i, j)
		}
		eta[i] = v
	}

	return eta, nil
}

// Predict returns the predicted mean response for the rows of x at the
// selected point on the path.
func (r *FitResult) Predict(x mat.Matrix, sel LambdaSelector) ([]float64, error) {

	eta, err := r.PredictLinear(x, sel)
	if err != nil {
		return nil, err
	}

	mn := make([]float64, len(eta))
	r.link.InvLink(eta, mn)
	r.fam.clipMean(mn)

	return mn, nil
}

// Summary returns a text table describing the fitted path, one row per
// penalty weight.
func (r *FitResult) Summary() string {

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Elastic net %s fit (alpha=%.3f)\n", r.FamilyName, r.Alpha)
	fmt.Fprintf(&buf, "Null deviance: %.4f\n", r.NullDeviance)
	if r.MaxIterReached {
		buf.WriteString("Warning: outer iteration cap reached\n")
	}
	if r.Partial {
		buf.WriteString("Warning: fit was cancelled before completing the path\n")
	}

	fmt.Fprintf(&buf, "%10s %6s %10s\n", "Lambda", "Df", "DevRatio")
	for k := range r.Lambdas {
		fmt.Fprintf(&buf, "%10.5f %6d %10.5f\n", r.Lambdas[k], r.NumNonzero[k], r.DevRatio[k])
	}

	return buf.String()
}
