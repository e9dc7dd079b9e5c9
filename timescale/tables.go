package timescale

// Tables bundles a parsed leap-second table and an optional EOP table, the
// construction-time state the time module's "only mutable state is a lazy
// polynomial cache" note in the design refers to: once built, every method
// is a pure function of its input epoch.
type Tables struct {
	Leap *LeapSecondTable
	Eop  *EopTable // nil when no eop_path was configured
}

// NewTables loads an LSK (required) and, if eopPath is non-empty, an EOP
// file. A missing eop_path is not an error: DUT1 falls back to 0 per spec.
func NewTables(lskPath, eopPath string) (*Tables, error) {
	leap, err := ParseLSK(lskPath)
	if err != nil {
		return nil, err
	}
	var eop *EopTable
	if eopPath != "" {
		eop, err = ParseEOP(eopPath)
		if err != nil {
			return nil, err
		}
	}
	return &Tables{Leap: leap, Eop: eop}, nil
}

// UTCToTT converts a UTC Julian date to TT using this table's parsed
// leap-second record rather than the package-default table.
func (t *Tables) UTCToTT(jdUTC float64) float64 {
	offset := t.Leap.Offset(jdUTC) + 32.184
	return jdUTC + offset/SecPerDay
}

// UT1 converts a UTC Julian date to UT1: UTC + DUT1, using the loaded EOP
// table if present. With no EOP table, or a date outside its coverage,
// DUT1 is 0 and UT1 == UTC.
func (t *Tables) UT1(jdUTC float64) float64 {
	return t.Eop.UT1JulianDate(jdUTC)
}
