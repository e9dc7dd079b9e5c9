package timescale

import (
	"bufio"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/vedastro/ephem/errs"
)

// eopRow is one parsed row of an IERS finals2000A.all file: Modified Julian
// Date and the UT1-UTC value (DUT1), in seconds.
type eopRow struct {
	mjd  float64
	dut1 float64
}

// EopTable is a Modified-Julian-Date-keyed DUT1 record, linearly
// interpolated between rows. The zero value behaves as an empty table:
// Lookup always returns (0, false).
type EopTable struct {
	rows []eopRow
}

// ParseEOP reads an IERS finals2000A.all fixed-width text file. Per line,
// MJD occupies columns 8-15 (1-indexed) and DUT1 occupies columns 59-68;
// rows where DUT1 is blank (not yet published) are skipped.
func ParseEOP(path string) (*EopTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfigError, "opening EOP file %q", path)
	}
	defer f.Close()

	var rows []eopRow
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 68 {
			continue
		}
		mjdField := strings.TrimSpace(line[7:15])
		dut1Field := strings.TrimSpace(line[58:68])
		if mjdField == "" || dut1Field == "" {
			continue
		}
		mjd, err := strconv.ParseFloat(mjdField, 64)
		if err != nil {
			continue
		}
		dut1, err := strconv.ParseFloat(dut1Field, 64)
		if err != nil {
			continue
		}
		rows = append(rows, eopRow{mjd: mjd, dut1: dut1})
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrTimeError, "reading EOP file %q", path)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].mjd < rows[j].mjd })
	return &EopTable{rows: rows}, nil
}

// Lookup returns the linearly-interpolated DUT1 (UT1-UTC, seconds) at the
// given Modified Julian Date. ok is false when mjd falls outside the
// table's covered range or the table is empty; per spec, callers then use
// DUT1 = 0 without treating it as an error.
func (e *EopTable) Lookup(mjd float64) (dut1 float64, ok bool) {
	if e == nil || len(e.rows) == 0 {
		return 0, false
	}
	rows := e.rows
	if mjd < rows[0].mjd || mjd > rows[len(rows)-1].mjd {
		return 0, false
	}
	idx := sort.Search(len(rows), func(i int) bool { return rows[i].mjd >= mjd })
	if idx < len(rows) && rows[idx].mjd == mjd {
		return rows[idx].dut1, true
	}
	if idx == 0 {
		return rows[0].dut1, true
	}
	lo, hi := rows[idx-1], rows[idx]
	frac := (mjd - lo.mjd) / (hi.mjd - lo.mjd)
	return lo.dut1 + frac*(hi.dut1-lo.dut1), true
}

// UT1JulianDate converts a UTC Julian date to UT1 using this table's DUT1,
// falling back to 0 (i.e. UT1 == UTC) when the date is not covered.
func (e *EopTable) UT1JulianDate(jdUTC float64) float64 {
	mjd := jdUTC - 2400000.5
	dut1, _ := e.Lookup(mjd)
	return jdUTC + dut1/SecPerDay
}
