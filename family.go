package glmstar

import (
	"fmt"
	"math"
)

// FamilyType is the type of GLM family used in a model.
type FamilyType uint8

// GaussianFamily, ... are families for a GLM.
const (
	GaussianFamily FamilyType = iota
	BinomialFamily
	PoissonFamily
	GammaFamily
)

// DevianceFunc evaluates and returns the deviance for a GLM.  The arguments
// are the data, the mean values, and the weights.  The weights may be nil in
// which case all weights are taken to be 1.
type DevianceFunc func([]float64, []float64, []float64) float64

// LogLikeFunc evaluates and returns the log-likelihood for a GLM, up to
// factors that are constant with respect to the mean.  The arguments are the
// data, the mean values, and the weights.  The weights may be nil in which
// case all weights are taken to be 1.
type LogLikeFunc func([]float64, []float64, []float64) float64

// Family represents a generalized linear model family.
type Family struct {

	// The name of the family
	Name string

	// The numeric code for the family
	TypeCode FamilyType

	// The deviance function for the family
	Deviance DevianceFunc

	// The log-likelihood function for the family
	LogLike LogLikeFunc

	// The names of valid links for this family.  The first listed link is
	// the canonical link.
	validLinks []LinkType
}

// NewFamily returns a family object corresponding to the given type code.
// Supported families are Gaussian, Binomial, Poisson, and Gamma.
func NewFamily(fam FamilyType) *Family {

	switch fam {
	case GaussianFamily:
		return &gaussian
	case BinomialFamily:
		return &binomial
	case PoissonFamily:
		return &poisson
	case GammaFamily:
		return &gamma
	default:
		msg := fmt.Sprintf("Unknown family: %v\n", fam)
		panic(msg)
	}
}

var gaussian = Family{
	Name:       "Gaussian",
	TypeCode:   GaussianFamily,
	Deviance:   gaussianDeviance,
	LogLike:    gaussianLogLike,
	validLinks: []LinkType{IdentityLink, LogLink, RecipLink},
}

var binomial = Family{
	Name:       "Binomial",
	TypeCode:   BinomialFamily,
	Deviance:   binomialDeviance,
	LogLike:    binomialLogLike,
	validLinks: []LinkType{LogitLink, CloglogLink, LogLink},
}

var poisson = Family{
	Name:       "Poisson",
	TypeCode:   PoissonFamily,
	Deviance:   poissonDeviance,
	LogLike:    poissonLogLike,
	validLinks: []LinkType{LogLink, IdentityLink},
}

var gamma = Family{
	Name:       "Gamma",
	TypeCode:   GammaFamily,
	Deviance:   gammaDeviance,
	LogLike:    gammaLogLike,
	validLinks: []LinkType{LogLink, RecipLink, IdentityLink},
}

// IsValidLink returns true or false based on whether the link is valid for
// the family.
func (fam *Family) IsValidLink(link *Link) bool {

	for _, q := range fam.validLinks {
		if link.TypeCode == q {
			return true
		}
	}

	return false
}

// defaultVariance returns the canonical variance function for the family.
func (fam *Family) defaultVariance() *Variance {

	switch fam.TypeCode {
	case GaussianFamily:
		return NewVariance(ConstantVar)
	case BinomialFamily:
		return NewVariance(BinomialVar)
	case PoissonFamily:
		return NewVariance(IdentityVar)
	case GammaFamily:
		return NewVariance(SquaredVar)
	default:
		panic("glmstar: unknown family")
	}
}

// ValidateResponse checks that the response values are in the family's valid
// range, returning a DomainError if not.
func (fam *Family) ValidateResponse(y []float64) error {

	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domainErrorf("glmstar: response value %d is not finite", i)
		}
		switch fam.TypeCode {
		case BinomialFamily:
			if v < 0 || v > 1 {
				return domainErrorf("glmstar: Binomial response value %d is %f, must be in [0, 1]", i, v)
			}
		case PoissonFamily:
			if v < 0 {
				return domainErrorf("glmstar: Poisson response value %d is negative", i)
			}
		case GammaFamily:
			if v <= 0 {
				return domainErrorf("glmstar: Gamma response value %d is not positive", i)
			}
		}
	}

	return nil
}

// pmin is the width of the band used to keep fitted means away from the
// boundary of the family's valid mean range.
const pmin = 1e-9

// clipMean moves fitted mean values that have escaped the family's valid
// range back into an epsilon band inside it.
func (fam *Family) clipMean(mn []float64) {

	switch fam.TypeCode {
	case BinomialFamily:
		for i, m := range mn {
			if m < pmin {
				mn[i] = pmin
			} else if m > 1-pmin {
				mn[i] = 1 - pmin
			}
		}
	case PoissonFamily, GammaFamily:
		for i, m := range mn {
			if m < pmin {
				mn[i] = pmin
			}
		}
	}
}

// nullMean returns the weighted mean response, clipped into the family's
// valid mean range.  This is the fitted mean of the intercept-only model
// under the canonical link.
func (fam *Family) nullMean(y, wgt []float64) float64 {

	var q, ws float64
	w := 1.0
	for i := range y {
		if wgt != nil {
			w = wgt[i]
		}
		q += w * y[i]
		ws += w
	}
	q /= ws

	switch fam.TypeCode {
	case BinomialFamily:
		if q < pmin {
			q = pmin
		} else if q > 1-pmin {
			q = 1 - pmin
		}
	case PoissonFamily, GammaFamily:
		if q < pmin {
			q = pmin
		}
	}

	return q
}

func gaussianDeviance(y, mn, wgt []float64) float64 {

	var dev float64
	var w float64 = 1

	for i := range y {
		if wgt != nil {
			w = wgt[i]
		}

		r := y[i] - mn[i]
		dev += w * r * r
	}

	return dev
}

func binomialDeviance(y, mn, wgt []float64) float64 {

	var dev float64
	var w float64 = 1

	for i := range y {
		if wgt != nil {
			w = wgt[i]
		}

		if y[i] > 0 {
			dev += 2 * w * y[i] * math.Log(y[i]/mn[i])
		}
		if y[i] < 1 {
			dev += 2 * w * (1 - y[i]) * math.Log((1-y[i])/(1-mn[i]))
		}
	}

	return dev
}

func poissonDeviance(y, mn, wgt []float64) float64 {

	var dev float64
	var w float64 = 1

	for i := range y {
		if wgt != nil {
			w = wgt[i]
		}

		if y[i] > 0 {
			dev += 2 * w * (y[i]*math.Log(y[i]/mn[i]) - (y[i] - mn[i]))
		} else {
			dev += 2 * w * mn[i]
		}
	}

	return dev
}

func gammaDeviance(y, mn, wgt []float64) float64 {

	var dev float64
	var w float64 = 1

	for i := range y {
		if wgt != nil {
			w = wgt[i]
		}

		dev += 2 * w * ((y[i]-mn[i])/mn[i] - math.Log(y[i]/mn[i]))
	}

	return dev
}

func gaussianLogLike(y, mn, wgt []float64) float64 {

	var ll float64
	var w float64 = 1

	for i := range y {
		if wgt != nil {
			w = wgt[i]
		}
		r := y[i] - mn[i]
		ll -= w * r * r / 2
	}

	return ll
}

func binomialLogLike(y, mn, wgt []float64) float64 {

	var ll float64
	var w float64 = 1

	for i := range y {
		if wgt != nil {
			w = wgt[i]
		}
		r := mn[i]/(1-mn[i]) + 1e-200
		ll += w * (y[i]*math.Log(r) + math.Log(1-mn[i]))
	}

	return ll
}

func poissonLogLike(y, mn, wgt []float64) float64 {

	var ll float64
	var w float64 = 1

	for i := range y {
		if wgt != nil {
			w = wgt[i]
		}
		ll += w * (y[i]*math.Log(mn[i]) - mn[i])
	}

	return ll
}

func gammaLogLike(y, mn, wgt []float64) float64 {

	var ll float64
	var w float64 = 1

	for i := range y {
		if wgt != nil {
			w = wgt[i]
		}
		ll -= w * (y[i]/mn[i] + math.Log(mn[i]))
	}

	return ll
}
