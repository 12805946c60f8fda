package glmstar

import (
	"math"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// CVResult holds cross-validated deviance estimates along the penalty path.
type CVResult struct {

	// The penalty weights, shared by every fold.
	Lambdas []float64

	// Mean held-out deviance per observation at each penalty weight.
	MeanDeviance []float64

	// Standard error of the held-out deviance across folds.
	SEDeviance []float64

	// Position and value of the penalty weight with the smallest mean
	// held-out deviance.
	BestIndex  int
	BestLambda float64

	// The number of folds used.
	NumFolds int
}

// CrossValidate estimates out-of-sample deviance along the penalty path by
// k-fold cross-validation.  The penalty weight sequence is determined from
// the full data set, then each fold is fit at that fixed sequence.  Folds
// run concurrently; each fold owns its own working state, and results are
// aggregated only after every fold has finished.  The fold assignment is
// randomized with the given seed.
func (m *ElasticNet) CrossValidate(nfolds int, seed uint64) (*CVResult, error) {

	if err := m.prepare(); err != nil {
		return nil, err
	}

	n := len(m.y)
	if nfolds < 2 || nfolds > n {
		return nil, configErrorf("glmstar: nfolds is %d, must be in [2, %d]", nfolds, n)
	}

	// The master path is fit on the full data so that every fold is
	// evaluated on a common grid.
	master, err := m.Fit()
	if err != nil {
		return nil, err
	}
	lambdas := master.Lambdas
	nlam := len(lambdas)

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	// devs[g][k] is the total held-out deviance of fold g at lambda k;
	// wsum[g] is the held-out weight in fold g.
	devs := make([][]float64, nfolds)
	wsums := make([]float64, nfolds)
	errs := make([]error, nfolds)

	var wg sync.WaitGroup

	for g := 0; g < nfolds; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			devs[g], wsums[g], errs[g] = m.cvFold(perm, g, nfolds, lambdas)
		}(g)
	}

	// Aggregation happens only after all folds complete.
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	cv := &CVResult{
		Lambdas:      lambdas,
		MeanDeviance: make([]float64, nlam),
		SEDeviance:   make([]float64, nlam),
		NumFolds:     nfolds,
	}

	for k := 0; k < nlam; k++ {

		// Per-observation deviance in each fold.
		var mn float64
		fold := make([]float64, nfolds)
		for g := 0; g < nfolds; g++ {
			fold[g] = devs[g][k] / wsums[g]
			mn += fold[g]
		}
		mn /= float64(nfolds)
		cv.MeanDeviance[k] = mn

		var v float64
		for g := 0; g < nfolds; g++ {
			d := fold[g] - mn
			v += d * d
		}
		cv.SEDeviance[k] = math.Sqrt(v/float64(nfolds-1)) / math.Sqrt(float64(nfolds))
	}

	cv.BestIndex = 0
	for k := 1; k < nlam; k++ {
		if cv.MeanDeviance[k] < cv.MeanDeviance[cv.BestIndex] {
			cv.BestIndex = k
		}
	}
	cv.BestLambda = lambdas[cv.BestIndex]

	return cv, nil
}

// cvFold fits the model with fold g held out and returns the total held-out
// deviance at each penalty weight, along with the held-out weight sum.
func (m *ElasticNet) cvFold(perm []int, g, nfolds int, lambdas []float64) ([]float64, float64, error) {

	_, p := m.x.Dims()

	var train, test []int
	for i, idx := range perm {
		if i%nfolds == g {
			test = append(test, idx)
		} else {
			train = append(train, idx)
		}
	}

	// Each fold owns independent copies of its training data; the parent
	// design matrix is only read.
	xtr := mat.NewDense(len(train), p, nil)
	ytr := make([]float64, len(train))
	var wtr, otr []float64
	if m.wgt != nil {
		wtr = make([]float64, len(train))
	}
	if m.off != nil {
		otr = make([]float64, len(train))
	}

	for i, idx := range train {
		for j := 0; j < p; j++ {
			xtr.Set(i, j, m.x.At(idx, j))
		}
		ytr[i] = m.y[idx]
		if wtr != nil {
			wtr[i] = m.wgt[idx]
		}
		if otr != nil {
			otr[i] = m.off[idx]
		}
	}

	sub := m.cloneFor(xtr, ytr, wtr, otr, lambdas)
	r, err := sub.Fit()
	if err != nil {
		return nil, 0, err
	}

	// Evaluate held-out deviance at each penalty weight.
	yte := make([]float64, len(test))
	var wte []float64
	if m.wgt != nil {
		wte = make([]float64, len(test))
	}
	var wsum float64
	for i, idx := range test {
		yte[i] = m.y[idx]
		if wte != nil {
			wte[i] = m.wgt[idx]
			wsum += wte[i]
		} else {
			wsum++
		}
	}

	xte := mat.NewDense(len(test), p, nil)
	for i, idx := range test {
		for j := 0; j < p; j++ {
			xte.Set(i, j, m.x.At(idx, j))
		}
	}

	dev := make([]float64, len(lambdas))
	mn := make([]float64, len(test))
	for k := range lambdas {
		eta, err := r.PredictLinear(xte, AtIndex(k))
		if err != nil {
			return nil, 0, err
		}
		if m.off != nil {
			for i, idx := range test {
				eta[i] += m.off[idx]
			}
		}
		m.link.InvLink(eta, mn)
		m.fam.clipMean(mn)
		dev[k] = m.fam.Deviance(yte, mn, wte)
	}

	return dev, wsum, nil
}
