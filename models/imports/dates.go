package imports

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// SentinelDate stands in for "no usable date". Explicit zero dates
// (0000-00-00 and variants) normalize to it, so downstream code cannot
// tell "blank" from "zero" — that is long-standing sheet behavior.
var SentinelDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

var errUnparseableDate = errors.New("unparseable date")

// excelEpoch is the day-zero of spreadsheet serial dates. 1899-12-30
// rather than 1899-12-31 absorbs the fictitious 1900-02-29 the format
// inherited, so real-world serials land on the right day.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate resolves the three accepted text formats. The delimiter
// implies the layout: "/" and "." are day-first, "-" is year-first.
// All-zero components yield the sentinel with no error; anything else
// that fails to split into three numeric parts is an error.
func ParseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SentinelDate, errUnparseableDate
	}

	var day, month, year string
	switch {
	case strings.Contains(text, "/"):
		parts := strings.Split(text, "/")
		if len(parts) != 3 {
			return SentinelDate, errUnparseableDate
		}
		day, month, year = parts[0], parts[1], parts[2]
	case strings.Contains(text, "."):
		parts := strings.Split(text, ".")
		if len(parts) != 3 {
			return SentinelDate, errUnparseableDate
		}
		day, month, year = parts[0], parts[1], parts[2]
	case strings.Contains(text, "-"):
		parts := strings.Split(text, "-")
		if len(parts) != 3 {
			return SentinelDate, errUnparseableDate
		}
		year, month, day = parts[0], parts[1], parts[2]
	default:
		return SentinelDate, errUnparseableDate
	}

	d, err1 := strconv.Atoi(strings.TrimSpace(day))
	m, err2 := strconv.Atoi(strings.TrimSpace(month))
	y, err3 := strconv.Atoi(strings.TrimSpace(year))
	if err1 != nil || err2 != nil || err3 != nil {
		return SentinelDate, errUnparseableDate
	}

	if d == 0 && m == 0 && y == 0 {
		return SentinelDate, nil
	}

	// UTC construction avoids local-timezone day shifting.
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), nil
}

// NormalizeDate is ParseDate with the error folded into the sentinel.
func NormalizeDate(text string) time.Time {
	t, _ := ParseDate(text)
	return t
}

// IsSentinel reports whether t is the zero-date sentinel.
func IsSentinel(t time.Time) bool {
	return t.Equal(SentinelDate)
}

// RenderISODate renders the persisted YYYY-MM-DD form.
func RenderISODate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// RenderDisplayDate renders the DD/MM/YYYY form used for sheet cells.
func RenderDisplayDate(t time.Time) string {
	return t.UTC().Format("02/01/2006")
}

// FromExcelSerial converts a spreadsheet serial number to the DD/MM/YYYY
// string form the parser keeps dates in. Fractional day parts (time of
// day) are dropped.
func FromExcelSerial(serial float64) string {
	days := int(serial)
	return RenderDisplayDate(excelEpoch.AddDate(0, 0, days))
}

// looksLikeSerial reports whether a raw cell value is a bare number,
// which excelize hands back for unformatted date cells.
func looksLikeSerial(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	serial, err := strconv.ParseFloat(text, 64)
	if err != nil || serial <= 0 {
		return 0, false
	}
	return serial, true
}

// normalizeDateCell turns whatever landed in a date cell into the string
// form the rest of the pipeline expects: serial numbers become
// DD/MM/YYYY, recognizable text passes through unchanged.
func normalizeDateCell(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if serial, ok := looksLikeSerial(raw); ok {
		return FromExcelSerial(serial)
	}
	return raw
}
