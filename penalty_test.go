package glmstar

import (
	"math"
	"testing"
)

func TestSoftThreshold(t *testing.T) {

	for _, c := range []struct {
		z, t, want float64
	}{
		{2, 0.5, 1.5},
		{-2, 0.5, -1.5},
		{0.3, 0.5, 0},
		{-0.3, 0.5, 0},
		{0.5, 0.5, 0},
		{2, 0, 2},
	} {
		if got := softThreshold(c.z, c.t); got != c.want {
			t.Errorf("softThreshold(%f, %f) = %f, want %f", c.z, c.t, got, c.want)
		}
	}
}

func TestProx(t *testing.T) {

	// Pure L1: soft thresholding only.
	pen := NewPenalty(1, nil)
	if got := pen.Prox(2, 0.5, 1, 0); !scalarClose(got, 1.5, 1e-12) {
		t.Errorf("lasso prox: got %f, want 1.5", got)
	}

	// Pure L2: shrinkage only.
	pen = NewPenalty(0, nil)
	if got := pen.Prox(2, 0.5, 1, 0); !scalarClose(got, 2.0/1.5, 1e-12) {
		t.Errorf("ridge prox: got %f, want %f", got, 2.0/1.5)
	}

	// Blend.
	pen = NewPenalty(0.5, nil)
	if got := pen.Prox(2, 1, 1, 0); !scalarClose(got, 1, 1e-12) {
		t.Errorf("blended prox: got %f, want 1", got)
	}

	// Per-coefficient factors: coefficient 0 is unpenalized.
	pen = NewPenalty(1, []float64{0, 2})
	if got := pen.Prox(2, 1, 1, 0); got != 2 {
		t.Errorf("unpenalized prox: got %f, want 2", got)
	}
	if got := pen.Prox(3, 1, 1, 1); !scalarClose(got, 1, 1e-12) {
		t.Errorf("doubled factor prox: got %f, want 1", got)
	}
}

func TestProxPure(t *testing.T) {

	// Prox must be a pure function of its arguments.
	pen := NewPenalty(0.3, []float64{1.5})
	a := pen.Prox(1.7, 0.4, 0.9, 0)
	b := pen.Prox(1.7, 0.4, 0.9, 0)
	if a != b {
		t.Errorf("prox is not deterministic: %v != %v", a, b)
	}
}

func TestPenaltyValue(t *testing.T) {

	coef := []float64{1, -2}

	pen := NewPenalty(1, nil)
	if got := pen.Value(coef); !scalarClose(got, 3, 1e-12) {
		t.Errorf("L1 value: got %f, want 3", got)
	}

	pen = NewPenalty(0, nil)
	if got := pen.Value(coef); !scalarClose(got, 2.5, 1e-12) {
		t.Errorf("L2 value: got %f, want 2.5", got)
	}

	pen = NewPenalty(1, []float64{2, 0})
	if got := pen.Value(coef); !scalarClose(got, 2, 1e-12) {
		t.Errorf("weighted value: got %f, want 2", got)
	}
}

func TestPenaltyAccessors(t *testing.T) {

	pen := NewPenalty(0.25, []float64{1, 2})
	if pen.Alpha() != 0.25 {
		t.Errorf("Alpha: got %f", pen.Alpha())
	}
	if pen.Factor(1) != 2 {
		t.Errorf("Factor: got %f", pen.Factor(1))
	}

	pen = NewPenalty(0.25, nil)
	if pen.Factor(5) != 1 {
		t.Errorf("default factor: got %f", pen.Factor(5))
	}

	if math.Signbit(pen.Prox(0, 1, 1, 0)) {
		t.Errorf("prox of zero should be positive zero")
	}
}
