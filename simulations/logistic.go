// +build ignore

/*
This simulation generates data from a logistic regression with correlated
covariates and compares the lightly penalized elastic net coefficients to the
unpenalized maximum likelihood fit.
*/

package main

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/jonathan-taylor/glmstar"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

func simulate(n int, r float64) (*mat.Dense, []float64) {

	rng := rand.NewSource(923847)
	u := distuv.Uniform{Min: 0, Max: 1, Src: rng}

	x := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		z := rand.NormFloat64()
		for j := 0; j < 3; j++ {
			x.Set(i, j, r*z+math.Sqrt(1-r*r)*rand.NormFloat64())
		}
	}

	y := make([]float64, n)
	for i := 0; i < n; i++ {
		lp := x.At(i, 0) - 0.5*x.At(i, 1)
		pr := 1 / (1 + math.Exp(-lp))
		if u.Rand() < pr {
			y[i] = 1
		}
	}

	return x, y
}

func main() {

	for _, r := range []float64{0, 0.5, 0.8} {

		fmt.Printf("correlation=%.1f\n\n", r)
		x, y := simulate(2000, r)

		model := glmstar.NewElasticNet(x, y).
			Family(glmstar.NewFamily(glmstar.BinomialFamily)).
			Alpha(0.5).
			LambdaMinRatio(1e-6).
			Done()

		result, err := model.Fit()
		if err != nil {
			panic(err)
		}
		last := len(result.Lambdas) - 1
		fmt.Printf("Path coefficients at lambda=%g: %v\n",
			result.Lambdas[last], result.Coefs[last])

		icept, coef, err := model.FitReference()
		if err != nil {
			panic(err)
		}
		fmt.Printf("MLE intercept: %f\n", icept)
		fmt.Printf("MLE coefficients: %v\n\n", coef)
	}
}
