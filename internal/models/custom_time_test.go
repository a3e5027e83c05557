package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDate_MarshalDateOnly(t *testing.T) {
	d := NewDate(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != `"2023-12-31"` {
		t.Errorf("got %s, want \"2023-12-31\"", b)
	}
}

func TestDate_UnmarshalBothForms(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{`"2024-01-15"`, `"2024-01-15T09:30:00Z"`} {
		var d Date
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			t.Errorf("Unmarshal(%s): %v", raw, err)
			continue
		}
		if !d.Equal(want) {
			t.Errorf("Unmarshal(%s) = %v, want %v", raw, d.Time, want)
		}
	}

	var d Date
	if err := json.Unmarshal([]byte(`"15/01/2024"`), &d); err == nil {
		t.Error("day-first strings are an import-file format, not a JSON one")
	}
}

func TestDate_Scan(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	var d Date
	if err := d.Scan(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)); err != nil {
		t.Fatalf("scan time.Time: %v", err)
	}
	if !d.Equal(want) {
		t.Errorf("scan truncates to midnight UTC, got %v", d.Time)
	}

	if err := d.Scan("2024-01-15"); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if !d.Equal(want) {
		t.Errorf("got %v, want %v", d.Time, want)
	}

	if err := d.Scan(42); err == nil {
		t.Error("expected an error scanning an int")
	}
}

func TestEpsRecord_JSONDates(t *testing.T) {
	rec := EpsRecord{
		Symbol:     "VNM",
		ReportDate: NewDate(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
		Eps:        decimal.NullDecimal{Decimal: decimal.RequireFromString("3.45"), Valid: true},
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(b), `"report_date":"2023-12-31"`) {
		t.Errorf("report_date should render date-only, got %s", b)
	}
}
