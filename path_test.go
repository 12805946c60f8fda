package glmstar

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// testMatrix builds a mat.Dense from row-major data.
func testMatrix(n, p int, vals []float64) *mat.Dense {
	return mat.NewDense(n, p, vals)
}

// pathData is a small well-conditioned Gaussian test problem.
func pathData() (*mat.Dense, []float64) {

	x := testMatrix(7, 2, []float64{
		4, 1,
		1, -1,
		-1, 1,
		3, 1,
		5, 2,
		-5, 5,
		3, -1,
	})
	y := []float64{3, 1, 5, 4, 2, 3, 6}

	return x, y
}

func TestLambdaGrid(t *testing.T) {

	lam := lambdaGrid(1, 0.001, 10)

	if len(lam) != 10 {
		t.Fatalf("grid length %d, want 10", len(lam))
	}
	if lam[0] != 1 {
		t.Errorf("grid start %f, want 1", lam[0])
	}
	if !scalarClose(lam[9], 0.001, 1e-12) {
		t.Errorf("grid end %f, want 0.001", lam[9])
	}
	for k := 1; k < len(lam); k++ {
		if lam[k] >= lam[k-1] {
			t.Errorf("grid not strictly decreasing at %d", k)
		}
	}

	lam = lambdaGrid(2, 0.5, 1)
	if len(lam) != 1 || lam[0] != 2 {
		t.Errorf("singleton grid: %v", lam)
	}
}

func TestNullPenalty(t *testing.T) {

	// At or above the analytic lambda-max every coefficient is zero.
	x, y := pathData()

	lmax, err := NewElasticNet(x, y).Done().LambdaMax()
	if err != nil {
		t.Fatal(err)
	}
	if lmax <= 0 {
		t.Fatalf("lambda max: %f", lmax)
	}

	r, err := NewElasticNet(x, y).Lambdas([]float64{2 * lmax, lmax}).Done().Fit()
	if err != nil {
		t.Fatal(err)
	}

	for k := range r.Lambdas {
		for j, b := range r.Coefs[k] {
			if k == 0 && b != 0 {
				t.Errorf("coefficient %d nonzero above lambda max: %g", j, b)
			}
			if b > 1e-12 || b < -1e-12 {
				t.Errorf("coefficient %d nonzero at lambda max: %g", j, b)
			}
		}
	}
}

func TestPathLength(t *testing.T) {

	// A requested 10 step path down to lambda_max/1000 yields exactly 10
	// entries in strictly decreasing order.
	x, y := pathData()

	lmax, err := NewElasticNet(x, y).Done().LambdaMax()
	if err != nil {
		t.Fatal(err)
	}

	r, err := NewElasticNet(x, y).Lambdas(lambdaGrid(lmax, 0.001, 10)).Done().Fit()
	if err != nil {
		t.Fatal(err)
	}

	if len(r.Lambdas) != 10 {
		t.Fatalf("path length %d, want 10", len(r.Lambdas))
	}
	if len(r.Coefs) != 10 || len(r.Intercepts) != 10 || len(r.Deviance) != 10 {
		t.Fatalf("result arrays do not match path length")
	}
	for k := 1; k < 10; k++ {
		if r.Lambdas[k] >= r.Lambdas[k-1] {
			t.Errorf("lambdas not strictly decreasing at %d", k)
		}
	}
}

func TestPathMonotone(t *testing.T) {

	// Along a decreasing path, the support grows and the deviance falls.
	x, y := pathData()

	r, err := NewElasticNet(x, y).NumLambda(20).Done().Fit()
	if err != nil {
		t.Fatal(err)
	}

	for k := 1; k < len(r.Lambdas); k++ {
		if r.NumNonzero[k] < r.NumNonzero[k-1] {
			t.Errorf("support shrank at step %d: %d -> %d", k, r.NumNonzero[k-1], r.NumNonzero[k])
		}
		if r.Deviance[k] > r.Deviance[k-1]+1e-6 {
			t.Errorf("deviance rose at step %d: %f -> %f", k, r.Deviance[k-1], r.Deviance[k])
		}
	}

	if r.Deviance[0] > r.NullDeviance+1e-6 {
		t.Errorf("first deviance exceeds null deviance")
	}
}

func TestWarmStartEquivalence(t *testing.T) {

	// Warm-started path fits match independent cold-start fits at each
	// penalty weight.
	x, y := pathData()

	lmax, err := NewElasticNet(x, y).Done().LambdaMax()
	if err != nil {
		t.Fatal(err)
	}
	lambdas := lambdaGrid(lmax, 0.01, 5)

	rp, err := NewElasticNet(x, y).Lambdas(lambdas).Done().Fit()
	if err != nil {
		t.Fatal(err)
	}

	for k, lam := range lambdas {
		rs, err := NewElasticNet(x, y).Lambdas([]float64{lam}).Done().Fit()
		if err != nil {
			t.Fatal(err)
		}
		for j := range rp.Coefs[k] {
			if !scalarClose(rp.Coefs[k][j], rs.Coefs[0][j], 1e-4) {
				t.Errorf("lambda %f coefficient %d: warm %f, cold %f",
					lam, j, rp.Coefs[k][j], rs.Coefs[0][j])
			}
		}
		if !scalarClose(rp.Intercepts[k], rs.Intercepts[0], 1e-4) {
			t.Errorf("lambda %f intercept: warm %f, cold %f",
				lam, rp.Intercepts[k], rs.Intercepts[0])
		}
	}
}

func TestEarlyTermination(t *testing.T) {

	// A generated path on noiseless data stops before exhausting the
	// requested length once the deviance explained saturates.
	x := testMatrix(6, 2, []float64{
		1, 0,
		2, 1,
		3, -1,
		4, 2,
		5, 0,
		6, 1,
	})
	y := make([]float64, 6)
	for i := 0; i < 6; i++ {
		y[i] = 2*x.At(i, 0) - x.At(i, 1)
	}

	r, err := NewElasticNet(x, y).NumLambda(100).Done().Fit()
	if err != nil {
		t.Fatal(err)
	}

	if len(r.Lambdas) >= 100 {
		t.Errorf("path was not cut short: %d entries", len(r.Lambdas))
	}
	if r.Partial {
		t.Errorf("early termination must not set the Partial flag")
	}
}
