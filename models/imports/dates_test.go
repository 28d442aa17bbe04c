package imports

import (
	"testing"
	"time"
)

func TestParseDateDelimiterImpliesLayout(t *testing.T) {
	want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	for _, text := range []string{"15/3/2024", "15.03.2024", "2024-03-15"} {
		got, err := ParseDate(text)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", text, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseDate(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestParseDateZeroVariantsAreSentinelWithoutError(t *testing.T) {
	for _, text := range []string{"0/0/0", "00/00/0000", "00.00.0000", "0000-00-00"} {
		got, err := ParseDate(text)
		if err != nil {
			t.Fatalf("ParseDate(%q): zero date must not error, got %v", text, err)
		}
		if !IsSentinel(got) {
			t.Fatalf("ParseDate(%q) = %v, want sentinel", text, got)
		}
	}
}

func TestParseDateGarbageIsSentinelWithError(t *testing.T) {
	for _, text := range []string{"", "soon", "1/2", "a/b/c", "12|31|2024", "2024-03"} {
		got, err := ParseDate(text)
		if err == nil {
			t.Fatalf("ParseDate(%q): expected error", text)
		}
		if !IsSentinel(got) {
			t.Fatalf("ParseDate(%q) = %v, want sentinel fallback", text, got)
		}
	}
}

// Rendering a parsed date and parsing it again must land on the same
// day, for both persisted and display forms.
func TestDateRoundTripIsStable(t *testing.T) {
	for _, text := range []string{"7/1/2025", "2023-12-31", "29.02.2024"} {
		first, err := ParseDate(text)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", text, err)
		}
		iso, err := ParseDate(RenderISODate(first))
		if err != nil || !iso.Equal(first) {
			t.Fatalf("ISO round trip of %q: got %v (%v), want %v", text, iso, err, first)
		}
		display, err := ParseDate(RenderDisplayDate(first))
		if err != nil || !display.Equal(first) {
			t.Fatalf("display round trip of %q: got %v (%v), want %v", text, display, err, first)
		}
	}
}

func TestNormalizeDateFoldsErrorsIntoSentinel(t *testing.T) {
	if got := NormalizeDate("not a date"); !IsSentinel(got) {
		t.Fatalf("NormalizeDate garbage = %v, want sentinel", got)
	}
	want := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	if got := NormalizeDate("1/6/2025"); !got.Equal(want) {
		t.Fatalf("NormalizeDate = %v, want %v", got, want)
	}
}

func TestFromExcelSerial(t *testing.T) {
	// 45292 is 2024-01-01; fractional time of day is dropped.
	if got := FromExcelSerial(45292); got != "01/01/2024" {
		t.Fatalf("FromExcelSerial(45292) = %q, want 01/01/2024", got)
	}
	if got := FromExcelSerial(45292.75); got != "01/01/2024" {
		t.Fatalf("FromExcelSerial(45292.75) = %q, want 01/01/2024", got)
	}
	// serial 2 is 1900-01-01, the sentinel day itself
	if got := FromExcelSerial(2); got != "01/01/1900" {
		t.Fatalf("FromExcelSerial(2) = %q, want 01/01/1900", got)
	}
}

func TestNormalizeDateCell(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"45292":      "01/01/2024",
		"15/3/2024":  "15/3/2024",
		"2024-03-15": "2024-03-15",
		"garbage":    "garbage",
	}
	for raw, want := range cases {
		if got := normalizeDateCell(raw); got != want {
			t.Errorf("normalizeDateCell(%q) = %q, want %q", raw, got, want)
		}
	}
}
