package glmstar

import (
	"context"
	"log"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ElasticNet specifies a regularized GLM to be fit by coordinate descent over
// a path of penalty weights.  Construct with NewElasticNet, configure with
// the chained setter methods, then call Done followed by Fit.
type ElasticNet struct {

	// The design matrix, owned by the caller and never modified.
	x *mat.Dense

	// The response values.
	y []float64

	// Observation weights, optional.
	wgt []float64

	// Offset added to the linear predictor, optional.
	off []float64

	// The GLM family
	fam *Family

	// The GLM link function
	link *Link

	// The GLM variance function
	vari *Variance

	// The elastic net penalty
	pen *Penalty

	// The L1/L2 mixing parameter.
	alpha float64

	// Per-coefficient penalty factors, optional.
	penf []float64

	// Caller-provided penalty weight sequence, optional.  If nil, a
	// sequence is generated from the data.
	lambdas []float64

	// Length and lower endpoint ratio of a generated sequence.
	nlambda     int
	lamMinRatio float64

	// If true, covariates are internally scaled to unit weighted norm.
	// Reported coefficients are always on the original scale.
	standardize bool

	// Iteration caps and tolerances.
	maxOuter  int
	maxSweeps int
	tol       float64
	irlsTol   float64

	// Early termination controls for generated paths.
	devMax float64
	fdev   float64

	// If not nil, write progress messages here.
	log *log.Logger

	done bool

	// Values computed by prepare.
	xcols [][]float64
	xn    []float64
	wsum  float64
}

// NewElasticNet creates a model for the given design matrix and response,
// with the Gaussian family and lasso penalty (alpha=1) as defaults.
func NewElasticNet(x *mat.Dense, y []float64) *ElasticNet {

	return &ElasticNet{
		x:           x,
		y:           y,
		alpha:       1,
		nlambda:     defaultNumLambda,
		standardize: true,
		maxOuter:    25,
		maxSweeps:   1000,
		tol:         1e-7,
		irlsTol:     1e-8,
		devMax:      0.999,
		fdev:        1e-5,
	}
}

// Family sets the GLM family.
func (m *ElasticNet) Family(fam *Family) *ElasticNet {
	m.fam = fam
	return m
}

// Link sets the link function.  The family must be set first.
func (m *ElasticNet) Link(link *Link) *ElasticNet {

	if m.fam == nil {
		panic("glmstar: must set family before setting link")
	}
	if !m.fam.IsValidLink(link) {
		panic("glmstar: invalid link for family")
	}
	m.link = link

	return m
}

// Alpha sets the L1/L2 mixing parameter; 1 gives the lasso and 0 gives
// ridge regression.
func (m *ElasticNet) Alpha(alpha float64) *ElasticNet {
	m.alpha = alpha
	return m
}

// Lambdas sets an explicit penalty weight sequence, which must be positive
// and strictly decreasing.  When set, no sequence is generated and the path
// is fit at exactly these values.
func (m *ElasticNet) Lambdas(lambdas []float64) *ElasticNet {
	m.lambdas = lambdas
	return m
}

// NumLambda sets the length of the generated penalty weight sequence.
func (m *ElasticNet) NumLambda(nlambda int) *ElasticNet {
	m.nlambda = nlambda
	return m
}

// LambdaMinRatio sets the ratio of the smallest to the largest penalty
// weight in the generated sequence.  The default is 1e-4 when there are more
// observations than covariates, and 1e-2 otherwise.
func (m *ElasticNet) LambdaMinRatio(r float64) *ElasticNet {
	m.lamMinRatio = r
	return m
}

// PenaltyFactors sets per-coefficient scalings of the penalty.  A factor of
// zero leaves the corresponding coefficient unpenalized.
func (m *ElasticNet) PenaltyFactors(penf []float64) *ElasticNet {
	m.penf = penf
	return m
}

// Weights sets per-observation weights.
func (m *ElasticNet) Weights(wgt []float64) *ElasticNet {
	m.wgt = wgt
	return m
}

// Offset sets a fixed offset that is added to the linear predictor.
func (m *ElasticNet) Offset(off []float64) *ElasticNet {
	m.off = off
	return m
}

// Standardize controls internal scaling of the covariates to unit weighted
// norm.  It is on by default.
func (m *ElasticNet) Standardize(flag bool) *ElasticNet {
	m.standardize = flag
	return m
}

// MaxOuterIter sets the cap on outer reweighting iterations.
func (m *ElasticNet) MaxOuterIter(n int) *ElasticNet {
	m.maxOuter = n
	return m
}

// MaxSweeps sets the cap on coordinate descent sweeps per path step.
func (m *ElasticNet) MaxSweeps(n int) *ElasticNet {
	m.maxSweeps = n
	return m
}

// Tol sets the coordinate descent convergence tolerance.
func (m *ElasticNet) Tol(tol float64) *ElasticNet {
	m.tol = tol
	return m
}

// DevMax sets the deviance ratio at which a generated path is cut short.
func (m *ElasticNet) DevMax(d float64) *ElasticNet {
	m.devMax = d
	return m
}

// Log takes a Logger value that will be used to log fitting progress.
func (m *ElasticNet) Log(log *log.Logger) *ElasticNet {
	m.log = log
	return m
}

// Done completes the definition of the model.  After calling Done the model
// can be fit by calling Fit.
func (m *ElasticNet) Done() *ElasticNet {

	if m.fam == nil {
		m.fam = NewFamily(GaussianFamily)
	}
	if m.link == nil {
		m.link = NewLink(m.fam.validLinks[0])
	}
	if m.vari == nil {
		m.vari = m.fam.defaultVariance()
	}

	m.done = true

	return m
}

// check validates the model configuration and data, returning a ConfigError
// or DomainError before any numeric work is done.
func (m *ElasticNet) check() error {

	n, p := m.x.Dims()

	if len(m.y) != n {
		return configErrorf("glmstar: design matrix has %d rows but the response has %d values", n, len(m.y))
	}
	if m.alpha < 0 || m.alpha > 1 {
		return configErrorf("glmstar: alpha is %f, must be in [0, 1]", m.alpha)
	}
	if m.wgt != nil {
		if len(m.wgt) != n {
			return configErrorf("glmstar: weight vector has length %d, expected %d", len(m.wgt), n)
		}
		for i, w := range m.wgt {
			if w < 0 {
				return configErrorf("glmstar: weight %d is negative", i)
			}
		}
	}
	if m.off != nil && len(m.off) != n {
		return configErrorf("glmstar: offset vector has length %d, expected %d", len(m.off), n)
	}
	if m.penf != nil && len(m.penf) != p {
		return configErrorf("glmstar: penalty factor vector has length %d, but the model has %d covariates", len(m.penf), p)
	}
	if m.lambdas != nil {
		for k, v := range m.lambdas {
			if v <= 0 {
				return configErrorf("glmstar: lambda[%d]=%f is not positive", k, v)
			}
			if k > 0 && v >= m.lambdas[k-1] {
				return configErrorf("glmstar: lambda sequence is not strictly decreasing at position %d", k)
			}
		}
	} else if m.nlambda < 1 {
		return configErrorf("glmstar: the lambda sequence length %d is not positive", m.nlambda)
	}

	return m.fam.ValidateResponse(m.y)
}

// prepare extracts and scales the covariate columns and computes the weight
// sum.  It is called once at the start of fitting.
func (m *ElasticNet) prepare() error {

	if !m.done {
		panic("glmstar: must call Done before fitting")
	}

	if err := m.check(); err != nil {
		return err
	}

	n, p := m.x.Dims()

	if m.wgt != nil {
		var ws float64
		for _, w := range m.wgt {
			ws += w
		}
		m.wsum = ws
	} else {
		m.wsum = float64(n)
	}

	m.xcols = make([][]float64, p)
	m.xn = make([]float64, p)

	for j := 0; j < p; j++ {

		col := make([]float64, n)
		mat.Col(col, j, m.x)

		var s float64
		for i, v := range col {
			if m.wgt != nil {
				s += m.wgt[i] * v * v
			} else {
				s += v * v
			}
		}
		s = math.Sqrt(s / m.wsum)

		if s == 0 {
			return configErrorf("glmstar: covariate %d has zero norm", j)
		}

		if m.standardize {
			for i := range col {
				col[i] /= s
			}
			m.xn[j] = s
		} else {
			m.xn[j] = 1
		}

		m.xcols[j] = col
	}

	m.pen = NewPenalty(m.alpha, m.penf)

	return nil
}

// linpred fills eta with the linear predictor icept + X*coef plus the offset
// if one is present.  The coefficients are on the internal (scaled) scale.
func (m *ElasticNet) linpred(coef []float64, icept float64, eta []float64) {

	for i := range eta {
		eta[i] = icept
	}
	for j, b := range coef {
		if b != 0 {
			xj := m.xcols[j]
			for i := range eta {
				eta[i] += b * xj[i]
			}
		}
	}
	if m.off != nil {
		for i := range eta {
			eta[i] += m.off[i]
		}
	}
}

// nullLinearization returns the working response, weights, and intercept of
// the intercept-only model, from which the analytic lambda-max is derived.
func (m *ElasticNet) nullLinearization() ([]float64, []float64, float64) {

	n := len(m.y)

	q := m.fam.nullMean(m.y, m.wgt)
	lp := []float64{0}
	m.link.Link([]float64{q}, lp)
	icept := lp[0]

	mn := make([]float64, n)
	lderiv := make([]float64, n)
	va := make([]float64, n)
	z := make([]float64, n)
	w := make([]float64, n)

	constMean(mn, q, n)
	m.link.Deriv(mn, lderiv)
	m.vari.Var(mn, va)

	for i, y := range m.y {
		z[i] = icept + lderiv[i]*(y-q)
		d := lderiv[i] * lderiv[i] * va[i]
		if m.wgt != nil {
			w[i] = m.wgt[i] / d
		} else {
			w[i] = 1 / d
		}
		if m.off != nil {
			z[i] -= m.off[i]
		}
	}

	return z, w, icept
}

// LambdaMax returns the analytically derived smallest penalty weight at
// which all penalized coefficients are zero.
func (m *ElasticNet) LambdaMax() (float64, error) {

	if err := m.prepare(); err != nil {
		return 0, err
	}

	z, w, icept := m.nullLinearization()
	return lambdaMax(m.xcols, z, w, icept, m.pen), nil
}

// buildPath returns the penalty weight sequence to fit, either the caller's
// sequence or a generated one.
func (m *ElasticNet) buildPath() *pathRunner {

	if m.lambdas != nil {
		lam := make([]float64, len(m.lambdas))
		copy(lam, m.lambdas)
		return &pathRunner{lambdas: lam, devMax: m.devMax, fdev: m.fdev}
	}

	z, w, icept := m.nullLinearization()
	lmax := lambdaMax(m.xcols, z, w, icept, m.pen)

	mr := m.lamMinRatio
	if mr <= 0 {
		n, p := m.x.Dims()
		if n < p {
			mr = 1e-2
		} else {
			mr = 1e-4
		}
	}

	return &pathRunner{
		lambdas: lambdaGrid(lmax, mr, m.nlambda),
		auto:    true,
		devMax:  m.devMax,
		fdev:    m.fdev,
	}
}

// Fit estimates the coefficient path and returns a FitResult.
func (m *ElasticNet) Fit() (*FitResult, error) {
	return m.FitContext(context.Background())
}

// FitContext is like Fit, but the fit may be abandoned between outer
// iterations or path steps when the context is cancelled.  A cancelled fit
// returns the best result obtained so far with the Partial flag set, not an
// error.
func (m *ElasticNet) FitContext(ctx context.Context) (*FitResult, error) {

	if err := m.prepare(); err != nil {
		return nil, err
	}

	path := m.buildPath()
	eng := newCDEngine(m.xcols, m.pen, m.tol, m.maxSweeps)
	it := newIRLSFitter(m, ctx, eng, path)

	fs := it.run()

	return m.assemble(fs, path, it), nil
}

// assemble freezes the working state into an immutable FitResult, mapping
// coefficients back to the original covariate scale.
func (m *ElasticNet) assemble(fs *fitState, path *pathRunner, it *irlsFitter) *FitResult {

	nlam := fs.nlam

	r := &FitResult{
		FamilyName:     m.fam.Name,
		Alpha:          m.alpha,
		Lambdas:        path.lambdas[:nlam],
		Coefs:          make([][]float64, nlam),
		Intercepts:     fs.icept[:nlam],
		Deviance:       fs.dev[:nlam],
		DevRatio:       make([]float64, nlam),
		NumNonzero:     make([]int, nlam),
		Sweeps:         fs.sweeps[:nlam],
		StepConverged:  fs.stepConv[:nlam],
		NullDeviance:   it.nullDev,
		Converged:      it.converged,
		MaxIterReached: it.maxIterReached,
		Partial:        it.partial,
		Warnings:       it.warnings,
		fam:            m.fam,
		link:           m.link,
	}

	for k := 0; k < nlam; k++ {
		coef := make([]float64, len(fs.coef[k]))
		for j, b := range fs.coef[k] {
			coef[j] = b / m.xn[j]
			if coef[j] != 0 {
				r.NumNonzero[k]++
			}
		}
		r.Coefs[k] = coef
		if it.nullDev > 0 {
			r.DevRatio[k] = 1 - fs.dev[k]/it.nullDev
		}
	}

	return r
}

// cloneFor returns a model with the same configuration as m but new data and
// a fixed penalty weight sequence.  It is used for cross-validation folds.
func (m *ElasticNet) cloneFor(x *mat.Dense, y, wgt, off, lambdas []float64) *ElasticNet {

	c := NewElasticNet(x, y)
	c.fam = m.fam
	c.link = m.link
	c.vari = m.vari
	c.alpha = m.alpha
	c.penf = m.penf
	c.lambdas = lambdas
	c.standardize = m.standardize
	c.maxOuter = m.maxOuter
	c.maxSweeps = m.maxSweeps
	c.tol = m.tol
	c.irlsTol = m.irlsTol
	c.devMax = m.devMax
	c.fdev = m.fdev
	c.wgt = wgt
	c.off = off
	c.done = true

	return c
}

// searchLambda returns the position of v in the decreasing sequence lam,
// as the index of the first entry not larger than v.
func searchLambda(lam []float64, v float64) int {
	return sort.Search(len(lam), func(i int) bool { return lam[i] <= v })
}

// one sets all elements of the slice to 1
func one(x []float64) {
	for i := range x {
		x[i] = 1
	}
}
