// +build ignore

/*
This simulation generates data from a sparse Poisson GLM and fits the lasso
path, reporting how well the active set at the cross-validated penalty weight
recovers the true support.
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

func simulate(n, p int) (*mat.Dense, []float64, []float64) {

	rng := rand.NewSource(4523745)

	coef := make([]float64, p)
	coef[0] = 0.5
	coef[1] = -0.5
	coef[2] = 0.25

	x := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			x.Set(i, j, rand.NormFloat64())
		}
	}

	y := make([]float64, n)
	for i := 0; i < n; i++ {
		var lp float64
		for j := 0; j < p; j++ {
			lp += coef[j] * x.At(i, j)
		}
		g := distuv.Poisson{Lambda: math.Exp(lp), Src: rng}
		y[i] = g.Rand()
	}

	return x, y, coef
}

func main() {

	for _, n := range []int{500, 2000} {

		fmt.Printf("n=%d\n\n", n)
		x, y, coef := simulate(n, 20)

		model := glmstar.NewElasticNet(x, y).
			Family(glmstar.NewFamily(glmstar.PoissonFamily)).
			Done()

		cv, err := model.CrossValidate(5, 42)
		if err != nil {
			panic(err)
		}
		fmt.Printf("Best lambda: %f\n", cv.BestLambda)

		result, err := model.Fit()
		if err != nil {
			panic(err)
		}
		fmt.Printf("%v\n", result.Summary())

		var hit, miss, fp int
		bhat := result.Coefs[cv.BestIndex]
		for j := range coef {
			switch {
			case coef[j] != 0 && bhat[j] != 0:
				hit++
			case coef[j] != 0:
				miss++
			case bhat[j] != 0:
				fp++
			}
		}
		fmt.Printf("Support recovery: %d hits, %d misses, %d false positives\n\n",
			hit, miss, fp)
	}
}
