package estimator

// Two-sided critical values of the Student t-distribution for 1..30 degrees
// of freedom, followed by the normal approximation for larger counts.
var criticalValues = map[float64]struct {
	t []float64
	z float64
}{
	0.90: {
		t: []float64{
			6.314, 2.920, 2.353, 2.132, 2.015, 1.943, 1.895, 1.860, 1.833, 1.812,
			1.796, 1.782, 1.771, 1.761, 1.753, 1.746, 1.740, 1.734, 1.729, 1.725,
			1.721, 1.717, 1.714, 1.711, 1.708, 1.706, 1.703, 1.701, 1.699, 1.697,
		},
		z: 1.645,
	},
	0.95: {
		t: []float64{
			12.706, 4.303, 3.182, 2.776, 2.571, 2.447, 2.365, 2.306, 2.262, 2.228,
			2.201, 2.179, 2.160, 2.145, 2.131, 2.120, 2.110, 2.101, 2.093, 2.086,
			2.080, 2.074, 2.069, 2.064, 2.060, 2.056, 2.052, 2.048, 2.045, 2.042,
		},
		z: 1.960,
	},
	0.99: {
		t: []float64{
			63.657, 9.925, 5.841, 4.604, 4.032, 3.707, 3.499, 3.355, 3.250, 3.169,
			3.106, 3.055, 3.012, 2.977, 2.947, 2.921, 2.898, 2.878, 2.861, 2.845,
			2.831, 2.819, 2.807, 2.797, 2.787, 2.779, 2.771, 2.763, 2.756, 2.750,
		},
		z: 2.576,
	},
}

// critical returns the two-sided critical value for the given confidence
// level and degrees of freedom.
func critical(level float64, degreesOfFreedom int) float64 {
	entry := criticalValues[level]
	if degreesOfFreedom >= 1 && degreesOfFreedom <= len(entry.t) {
		return entry.t[degreesOfFreedom-1]
	}
	return entry.z
}
