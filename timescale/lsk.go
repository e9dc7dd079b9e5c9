package timescale

import (
	"bufio"
	"os"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/vedastro/ephem/errs"
)

// deltaAtLine matches one row of a NAIF LSK DELTET/DELTA_AT assignment, e.g.
//
//	10, @1972-JAN-1
var deltaAtLine = regexp.MustCompile(`(\d+)\s*,\s*@(\d{4})-([A-Za-z]{3})-(\d{1,2})`)

var lskMonths = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// ParseLSK reads a NAIF leap-second kernel text file and returns its
// DELTET/DELTA_AT entries as a LeapSecondTable, sorted by effective date.
func ParseLSK(path string) (*LeapSecondTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfigError, "opening LSK file %q", path)
	}
	defer f.Close()

	var entries []leapEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		m := deltaAtLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		offset, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		month, ok := lskMonths[m[3]]
		if !ok {
			return nil, errs.Wrap(errs.ErrTimeError, "LSK %q: unrecognized month %q", path, m[3])
		}
		year, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[4])
		jd := TimeToJDUTC(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
		entries = append(entries, leapEntry{jdUTC: jd, offset: offset})
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrTimeError, "reading LSK file %q", path)
	}
	if len(entries) == 0 {
		return nil, errs.Wrap(errs.ErrTimeError, "LSK file %q: no DELTET/DELTA_AT entries found", path)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].jdUTC < entries[j].jdUTC })
	for i := 1; i < len(entries); i++ {
		if entries[i].offset < entries[i-1].offset {
			return nil, errs.Wrap(errs.ErrTimeError, "LSK file %q: nonmonotonic leap seconds at entry %d", path, i)
		}
	}
	return &LeapSecondTable{entries: entries}, nil
}
