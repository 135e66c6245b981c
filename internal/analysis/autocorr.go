package analysis

import "gonum.org/v1/gonum/stat"

// Autocorrelation returns the normalized autocorrelation for lags 0..maxLag.
// A constant series has no defined correlation and yields nil.
func Autocorrelation(series []float64, maxLag int) []float64 {
	n := len(series)
	if n < 2 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean, variance := stat.PopMeanVariance(series, nil)
	if variance == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		sum := 0.0
		for i := 0; i+lag < n; i++ {
			sum += (series[i] - mean) * (series[i+lag] - mean)
		}
		acf[lag] = sum / (float64(n) * variance)
	}
	return acf
}

// IntegratedTime estimates τ = 1/2 + Σ ρ(t), stopping at the first
// non-positive correlation.
func IntegratedTime(series []float64) float64 {
	acf := Autocorrelation(series, len(series)/2)
	if acf == nil {
		return 0
	}
	tau := 0.5
	for _, rho := range acf[1:] {
		if rho <= 0 {
			break
		}
		tau += rho
	}
	return tau
}
