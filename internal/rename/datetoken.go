package rename

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// dateTokenRE matches the timestamp chat exporters embed in filenames,
// e.g. "ChatGPT Image Aug 22, 2025, 12_45_12 PM.png": month name, day,
// four-digit year, HH_MM_SS and an optional AM/PM marker.
var dateTokenRE = regexp.MustCompile(
	`(?i)[A-Za-z]{3,}\s+\d{1,2},\s*\d{4},\s*\d{1,2}_\d{1,2}_\d{1,2}\s*(?:AM|PM)?`)

// Abbreviated month first; full month as fallback.
var dateTokenLayouts = []string{
	"Jan 2, 2006, 3_04_05 PM",
	"January 2, 2006, 3_04_05 PM",
}

// ParseDateToken extracts the embedded timestamp from a filename. It is a
// pure function: no match or an unparseable match simply reports false.
// Whitespace runs inside the matched token are collapsed before parsing.
func ParseDateToken(name string) (time.Time, bool) {
	m := dateTokenRE.FindString(name)
	if m == "" {
		return time.Time{}, false
	}
	s := strings.Join(strings.Fields(m), " ")
	// time.Parse matches month names case-insensitively but the "PM"
	// layout token only accepts uppercase; the regex admits any case.
	if n := len(s); n >= 2 && (strings.EqualFold(s[n-2:], "AM") || strings.EqualFold(s[n-2:], "PM")) {
		s = s[:n-2] + strings.ToUpper(s[n-2:])
	}
	for _, layout := range dateTokenLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type datedEntry struct {
	Entry
	ts time.Time
}

// Order sorts entries needing a name into their final sequence: dated
// entries ascending by embedded timestamp (stable, so equal timestamps
// keep their scan order), followed by undated entries ascending by
// lowercase filename. Dated files carry a real chronology worth keeping;
// undated files have no better signal than their name.
func Order(entries []Entry) []Entry {
	var dated []datedEntry
	var undated []Entry
	for _, e := range entries {
		if ts, ok := ParseDateToken(e.Name); ok {
			dated = append(dated, datedEntry{Entry: e, ts: ts})
		} else {
			undated = append(undated, e)
		}
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].ts.Before(dated[j].ts)
	})
	sort.Slice(undated, func(i, j int) bool {
		return strings.ToLower(undated[i].Name) < strings.ToLower(undated[j].Name)
	})

	ordered := make([]Entry, 0, len(entries))
	for _, d := range dated {
		ordered = append(ordered, d.Entry)
	}
	return append(ordered, undated...)
}
