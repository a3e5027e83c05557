package tabular

import (
	"errors"
	"testing"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Symbol":       "symbol",
		" REPORT DATE": "reportdate",
		"report_date":  "reportdate",
		"Report-Date":  "reportdate",
		"roe.nganh":    "roenganh",
		"":             "",
	}
	for in, want := range cases {
		if got := NormalizeHeader(in); got != want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func testSchema() *Schema {
	return &Schema{Columns: []Column{
		{Key: "symbol", Aliases: []string{"ticker", "ma"}},
		{Key: "reportdate", Aliases: []string{"report date", "date"}},
		{Key: "roeindustry", Aliases: []string{"roe nganh"}, SecondaryKey: "roeindustryrate"},
	}}
}

func TestMapHeader_Aliases(t *testing.T) {
	hm := testSchema().MapHeader([]string{"Ticker", "Report Date"})
	if hm.keys[0] != "symbol" || hm.keys[1] != "reportdate" {
		t.Errorf("unexpected header mapping: %v", hm.keys)
	}
	if len(hm.Ignored) != 0 {
		t.Errorf("expected no ignored columns, got %v", hm.Ignored)
	}
}

func TestMapHeader_UnrecognizedPreserved(t *testing.T) {
	hm := testSchema().MapHeader([]string{"Symbol", "Mystery Column"})
	if hm.keys[1] != "mysterycolumn" {
		t.Errorf("unrecognized header should keep its normalized name, got %q", hm.keys[1])
	}
	if len(hm.Ignored) != 1 || hm.Ignored[0] != "mysterycolumn" {
		t.Errorf("expected ignored list [mysterycolumn], got %v", hm.Ignored)
	}
}

func TestMapHeader_DuplicateDualMapped(t *testing.T) {
	hm := testSchema().MapHeader([]string{"Symbol", "ROE nganh", "roe_nganh"})
	if hm.keys[1] != "roeindustry" {
		t.Errorf("first occurrence should win primary key, got %q", hm.keys[1])
	}
	if hm.keys[2] != "roeindustryrate" {
		t.Errorf("second occurrence should feed the secondary key, got %q", hm.keys[2])
	}
}

func TestMapHeader_DuplicateWithoutDualMapIgnored(t *testing.T) {
	hm := testSchema().MapHeader([]string{"Symbol", "symbol "})
	if hm.keys[0] != "symbol" {
		t.Errorf("first occurrence should map, got %q", hm.keys[0])
	}
	if hm.keys[1] != "" {
		t.Errorf("duplicate of a non-dual-mapped column should be dropped, got %q", hm.keys[1])
	}
}

func TestMapRows(t *testing.T) {
	table := [][]string{
		{"Ticker", "Report Date", "ROE nganh"},
		{"aapl", "31/12/2023", "12.5"},
		{"", "", ""},
		{"VNM", "30/06/2023"},
	}
	rows, _, err := testSchema().MapRows(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (blank skipped), got %d", len(rows))
	}
	if rows[0].Line != 2 || rows[1].Line != 4 {
		t.Errorf("unexpected line numbers: %d, %d", rows[0].Line, rows[1].Line)
	}
	if rows[0].Get("symbol") != "aapl" {
		t.Errorf("unexpected symbol cell: %q", rows[0].Get("symbol"))
	}
	// Short row: the missing trailing cell is absent, not an error.
	if rows[1].Has("roeindustry") {
		t.Error("missing trailing cell should be absent from the row")
	}
}

func TestMapRows_NoDataRows(t *testing.T) {
	_, _, err := testSchema().MapRows([][]string{{"Symbol", "Report Date"}})
	if !errors.Is(err, ErrNoValidRows) {
		t.Fatalf("expected ErrNoValidRows, got %v", err)
	}
}
