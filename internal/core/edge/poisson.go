package edge

import "math"

// PoissonCDF returns P(X <= x) for X ~ Poisson(lambda). Non-integer x
// truncates to floor(x), so a 2.5 line asks for P(X <= 2).
//
// Computed by direct series summation of e^{-λ} λ^k / k!; shot counts and
// predictions are small enough that the series is exact to double
// precision in a handful of terms.
func PoissonCDF(x, lambda float64) float64 {
	if x < 0 {
		return 0
	}
	if lambda <= 0 {
		return 1
	}

	k := int(math.Floor(x))
	term := math.Exp(-lambda)
	sum := term
	for i := 1; i <= k; i++ {
		term *= lambda / float64(i)
		sum += term
	}
	if sum > 1 {
		return 1
	}
	return sum
}

// OverProbability is P(X > line) under a Poisson model with rate equal to
// the point prediction.
func OverProbability(prediction, line float64) float64 {
	return 1 - PoissonCDF(line, prediction)
}

// UnderProbability is P(X < line). The -0.5 continuity correction converts
// the strict inequality into the right discrete lookup: for a 1.5 line,
// P(X < 1.5) = P(X <= 1). It must not be simplified to PoissonCDF(line),
// which would include one count too many on integer lines.
func UnderProbability(prediction, line float64) float64 {
	return PoissonCDF(line-0.5, prediction)
}
