package glmstar

import (
	"fmt"
)

// VarianceType is used to specify a GLM variance function.
type VarianceType uint8

const (
	ConstantVar VarianceType = iota
	IdentityVar
	BinomialVar
	SquaredVar
)

// Variance represents a GLM variance function, giving the variance of an
// observation as a function of its mean.
type Variance struct {
	Name string
	Var  VecFunc
}

// NewVariance returns a new variance function object corresponding to the
// given type code.
func NewVariance(vartype VarianceType) *Variance {

	switch vartype {
	case ConstantVar:
		return &constVariance
	case IdentityVar:
		return &identVariance
	case BinomialVar:
		return &binomVariance
	case SquaredVar:
		return &squaredVariance
	default:
		msg := fmt.Sprintf("Unknown variance function: %d\n", vartype)
		panic(msg)
	}
}

var constVariance = Variance{
	Name: "Constant",
	Var:  constVar,
}

var identVariance = Variance{
	Name: "Identity",
	Var:  identVar,
}

var binomVariance = Variance{
	Name: "Binomial",
	Var:  binomVar,
}

var squaredVariance = Variance{
	Name: "Squared",
	Var:  squaredVar,
}

func constVar(mn []float64, v []float64) {
	one(v)
}

func identVar(mn []float64, v []float64) {
	copy(v, mn)
}

func binomVar(mn []float64, v []float64) {
	for i, p := range mn {
		v[i] = p * (1 - p)
	}
}

func squaredVar(mn []float64, v []float64) {
	for i, m := range mn {
		v[i] = m * m
	}
}
