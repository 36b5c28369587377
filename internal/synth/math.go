package synth

import "math"

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// invNorm approximates the standard normal quantile function using the
// Acklam rational approximation. Input is clamped away from 0 and 1.
func invNorm(p float64) float64 {
	const eps = 1e-9
	if p < eps {
		p = eps
	}
	if p > 1-eps {
		p = 1 - eps
	}

	a := [6]float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	b := [5]float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01}
	c := [6]float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	d := [4]float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
		3.754408661907416e+00}

	const plow = 0.02425
	switch {
	case p < plow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p > 1-plow:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	default:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	}
}

// mean computes the average of a slice.
func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// std computes the standard deviation in a single pass.
func std(x []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}
	sum, sumSq := 0.0, 0.0
	for _, v := range x {
		sum += v
		sumSq += v * v
	}
	m := sum / n
	v := (sumSq / n) - m*m
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}

// correlation builds the Pearson correlation matrix of the given column
// vectors. Degenerate (zero variance) columns correlate with nothing.
func correlation(cols [][]float64) [][]float64 {
	k := len(cols)
	means := make([]float64, k)
	stds := make([]float64, k)
	for j, col := range cols {
		means[j] = mean(col)
		stds[j] = std(col)
	}

	r := make([][]float64, k)
	for i := range r {
		r[i] = make([]float64, k)
		r[i][i] = 1
	}
	if k == 0 || len(cols[0]) == 0 {
		return r
	}
	n := float64(len(cols[0]))
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if stds[i] == 0 || stds[j] == 0 {
				continue
			}
			cov := 0.0
			for t := range cols[i] {
				cov += (cols[i][t] - means[i]) * (cols[j][t] - means[j])
			}
			cov /= n
			rho := cov / (stds[i] * stds[j])
			if rho > 1 {
				rho = 1
			} else if rho < -1 {
				rho = -1
			}
			r[i][j] = rho
			r[j][i] = rho
		}
	}
	return r
}

// cholesky returns the lower-triangular factor L with L*Lᵀ = a, and false
// when a is not positive definite.
func cholesky(a [][]float64) ([][]float64, bool) {
	k := len(a)
	l := make([][]float64, k)
	for i := range l {
		l[i] = make([]float64, k)
	}
	for i := 0; i < k; i++ {
		for j := 0; j <= i; j++ {
			sum := a[i][j]
			for t := 0; t < j; t++ {
				sum -= l[i][t] * l[j][t]
			}
			if i == j {
				if sum <= 0 {
					return nil, false
				}
				l[i][i] = math.Sqrt(sum)
			} else {
				l[i][j] = sum / l[j][j]
			}
		}
	}
	return l, true
}

// shrink pulls a correlation matrix toward the identity; the small ridge
// keeps Cholesky stable on near-singular inputs.
func shrink(r [][]float64, lambda float64) [][]float64 {
	k := len(r)
	out := make([][]float64, k)
	for i := range out {
		out[i] = make([]float64, k)
		for j := range out[i] {
			if i == j {
				out[i][j] = 1
			} else {
				out[i][j] = (1 - lambda) * r[i][j]
			}
		}
	}
	return out
}
