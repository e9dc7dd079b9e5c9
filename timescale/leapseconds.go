package timescale

import "time"

// leapEntry is one row of a leap-second table: the UTC Julian date at which
// a new TAI-UTC offset (in whole seconds) takes effect.
type leapEntry struct {
	jdUTC  float64
	offset float64
}

// defaultLeapSeconds is the historical IERS/NAIF leap-second record, the
// same data a DELTET/DELTA_AT block in a NAIF LSK file encodes. It backs the
// package-level LeapSecondOffset for callers that have not loaded their own
// LSK file.
var defaultLeapSeconds = buildDefaultLeapSeconds()

func buildDefaultLeapSeconds() []leapEntry {
	raw := []struct {
		y, m, d int
		offset  float64
	}{
		{1972, 1, 1, 10}, {1972, 7, 1, 11}, {1973, 1, 1, 12}, {1974, 1, 1, 13},
		{1975, 1, 1, 14}, {1976, 1, 1, 15}, {1977, 1, 1, 16}, {1978, 1, 1, 17},
		{1979, 1, 1, 18}, {1980, 1, 1, 19}, {1981, 7, 1, 20}, {1982, 7, 1, 21},
		{1983, 7, 1, 22}, {1985, 7, 1, 23}, {1988, 1, 1, 24}, {1990, 1, 1, 25},
		{1991, 1, 1, 26}, {1992, 7, 1, 27}, {1993, 7, 1, 28}, {1994, 7, 1, 29},
		{1996, 1, 1, 30}, {1997, 7, 1, 31}, {1999, 1, 1, 32}, {2006, 1, 1, 33},
		{2009, 1, 1, 34}, {2012, 7, 1, 35}, {2015, 7, 1, 36}, {2017, 1, 1, 37},
	}
	entries := make([]leapEntry, len(raw))
	for i, r := range raw {
		jd := TimeToJDUTC(time.Date(r.y, time.Month(r.m), r.d, 0, 0, 0, 0, time.UTC))
		entries[i] = leapEntry{jdUTC: jd, offset: r.offset}
	}
	return entries
}

// LeapSecondTable is a parsed, ordered TAI-UTC record. The zero value is not
// usable; build one with ParseLSK.
type LeapSecondTable struct {
	entries []leapEntry
}

// Offset returns TAI-UTC, in seconds, in effect at the given UTC Julian
// date. Dates before the table's first entry return the first entry's
// offset; dates after the last entry return the last (current, until a
// newer LSK is loaded).
func (lt *LeapSecondTable) Offset(jdUTC float64) float64 {
	return lookupLeap(lt.entries, jdUTC)
}

func lookupLeap(entries []leapEntry, jdUTC float64) float64 {
	if len(entries) == 0 {
		return 0
	}
	offset := entries[0].offset
	for _, e := range entries {
		if jdUTC < e.jdUTC {
			break
		}
		offset = e.offset
	}
	return offset
}

// LeapSecondOffset returns TAI-UTC, in seconds, using the built-in
// historical table. Engines constructed with an explicit lsk_path consult
// their own parsed LeapSecondTable instead; this free function exists for
// callers (and tests) that only need the well-known public record.
func LeapSecondOffset(jdUTC float64) float64 {
	return lookupLeap(defaultLeapSeconds, jdUTC)
}
