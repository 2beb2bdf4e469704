package evaluation

import (
	"math"

	"medibot/domain/metrics"

	"gonum.org/v1/gonum/stat/distuv"
)

// WilsonInterval is the Wilson score interval for a binomial proportion.
func WilsonInterval(successes, n int, level float64) metrics.Interval {
	if n == 0 {
		return metrics.Interval{Lower: 0, Upper: 1, Level: level}
	}
	z := distuv.UnitNormal.Quantile(1 - (1-level)/2)
	nf := float64(n)
	p := float64(successes) / nf
	z2 := z * z

	denom := 1 + z2/nf
	center := (p + z2/(2*nf)) / denom
	half := z * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf)) / denom

	return metrics.Interval{
		Lower: math.Max(0, center-half),
		Upper: math.Min(1, center+half),
		Level: level,
	}
}
