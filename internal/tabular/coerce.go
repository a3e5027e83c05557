package tabular

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrMissingKey  = errors.New("missing natural key")
)

// excelEpoch is day zero of the spreadsheet serial date system (the 1900
// system with its leap-year quirk already folded in).
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Plausible serial date bounds: 1900-03-01 through year ~2173. Values outside
// are treated as not-a-date rather than silently producing antique timestamps.
const (
	minSerialDate = 61
	maxSerialDate = 100000
)

// ParseDate coerces a raw cell into a calendar date. Accepted inputs, in
// order: ISO strings, day/month/year with slash, dash or dot separators
// (source data is Vietnamese-market, so 03/04/2024 is April 3rd), and
// spreadsheet serial numbers. All results are UTC midnight.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	if t, ok := parseDayMonthYear(s); ok {
		return t, nil
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		days := int(serial)
		if days >= minSerialDate && days <= maxSerialDate {
			return excelEpoch.AddDate(0, 0, days), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

func parseDayMonthYear(s string) (time.Time, bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if year < 1000 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject rollovers such as 31/02/2024.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

// ParseDecimal coerces a raw cell into a nullable decimal. Values using the
// European convention (dot thousands separator, comma decimal point) are
// cleaned before parsing: "1.234,56" becomes 1234.56. Empty or unparseable
// values coerce to null — absence of a metric is not an error.
func ParseDecimal(raw string) decimal.NullDecimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.NullDecimal{}
	}

	if strings.Contains(s, ",") {
		// Comma present: dots are thousands separators, comma is the
		// decimal point. Without a comma a dot is already the decimal
		// point ("3.45" stays 3.45).
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// ParseSymbol coerces a natural-key string: trimmed and uppercased. An empty
// value fails with ErrMissingKey.
func ParseSymbol(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrMissingKey
	}
	return s, nil
}

// ParseInt coerces a raw cell into a nullable integer, used for integer
// reference keys such as stock ids. Empty values return (0, false, nil);
// non-numeric values return an error.
func ParseInt(raw string) (int64, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Spreadsheets sometimes render integers as "123.0".
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil && f == float64(int64(f)) {
			return int64(f), true, nil
		}
		return 0, false, fmt.Errorf("not an integer: %q", raw)
	}
	return v, true, nil
}
