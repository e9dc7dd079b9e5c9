package timescale

// deltaTYears/deltaTValues are a coarse historical-and-predicted ΔT (TT-UT1)
// table in the style of Espenak & Meeus's long-term ΔT polynomial, sampled
// every 50 years. DeltaT linearly interpolates between rows and clamps at
// the ends.
var deltaTYears = []float64{1800, 1850, 1900, 1950, 2000, 2050, 2100, 2150, 2200}
var deltaTValues = []float64{18.3670, 7.26, -2.79, 29.07, 63.829, 93.0, 202.0, 320.0, 442.0}

// DeltaT returns ΔT = TT-UT1 in seconds for a decimal year, by linear
// interpolation of the built-in table. Years before 1800 or after 2200
// clamp to the nearest table entry.
func DeltaT(year float64) float64 {
	n := len(deltaTYears)
	if year <= deltaTYears[0] {
		return deltaTValues[0]
	}
	if year >= deltaTYears[n-1] {
		return deltaTValues[n-1]
	}
	idx := 0
	for idx < n-2 && deltaTYears[idx+1] < year {
		idx++
	}
	if idx >= n-1 {
		idx = n - 2
	}
	y0, y1 := deltaTYears[idx], deltaTYears[idx+1]
	v0, v1 := deltaTValues[idx], deltaTValues[idx+1]
	frac := (year - y0) / (y1 - y0)
	return v0 + frac*(v1-v0)
}
