package enrichment

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// relativeTolerance guards the "as or more extreme" comparison against
// floating point noise between mathematically equal probabilities
const relativeTolerance = 1e-7

// FisherExact returns the two-sided p-value of Fisher's exact test for the
// 2x2 table [[a, b], [c, d]]. The p-value is the total probability of all
// tables with the same margins that are no more likely than the observed
// one. All cells must be non-negative.
func FisherExact(a, b, c, d int) float64 {
	total := a + b + c + d
	row := a + b
	col := a + c

	lo := row - (total - col)
	if lo < 0 {
		lo = 0
	}
	hi := row
	if col < hi {
		hi = col
	}

	logDenominator := combin.LogGeneralizedBinomial(float64(total), float64(row))
	logPMF := func(x int) float64 {
		return combin.LogGeneralizedBinomial(float64(col), float64(x)) +
			combin.LogGeneralizedBinomial(float64(total-col), float64(row-x)) -
			logDenominator
	}

	observed := logPMF(a)
	limit := observed + math.Log1p(relativeTolerance)

	p := 0.0
	for x := lo; x <= hi; x++ {
		if lp := logPMF(x); lp <= limit {
			p += math.Exp(lp)
		}
	}

	return math.Min(p, 1.0)
}
