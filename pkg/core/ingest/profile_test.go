package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `date,cash_in,cash_out,balance,category
2024-01-31,12000,9500,45000,exploitation
2024-02-29,11000,10200,45800,exploitation
2024-03-31,9800,11500,44100,exploitation
Total,32800,31200,,
`

func TestProfileCSV(t *testing.T) {
	profile, err := ProfileCSV("f1", "treso.csv", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile.Columns) != 5 || profile.Columns[0] != "date" {
		t.Errorf("columns = %v", profile.Columns)
	}
	if profile.NumRows != 4 {
		t.Errorf("rows = %d, want 4", profile.NumRows)
	}
	if !profile.HasTotalRows {
		t.Errorf("total row not detected")
	}
	if profile.Dtypes["date"] != "date" {
		t.Errorf("date column dtype = %s", profile.Dtypes["date"])
	}
	if profile.Dtypes["cash_in"] != "number" {
		t.Errorf("cash_in dtype = %s", profile.Dtypes["cash_in"])
	}
	if profile.Dtypes["category"] != "text" {
		t.Errorf("category dtype = %s", profile.Dtypes["category"])
	}
}

func TestProfileCSVEmptyFile(t *testing.T) {
	if _, err := ProfileCSV("f1", "empty.csv", strings.NewReader("")); err == nil {
		t.Fatalf("empty file must error")
	}
}

func TestProfileCSVFrenchNumbers(t *testing.T) {
	csvData := "mois,montant\njanvier,\"1 234,56\"\nfévrier,\"2 000,00\"\n"
	profile, err := ProfileCSV("f1", "fr.csv", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Dtypes["montant"] != "number" {
		t.Errorf("French decimal should classify as number, got %s", profile.Dtypes["montant"])
	}
}

func TestHTMLTableToCSV(t *testing.T) {
	html := `<table>
<tr><th>date</th><th colspan="2">flux</th></tr>
<tr><td>2024-01</td><td>100</td><td>80</td></tr>
<tr><td>2024-02</td><td>110</td><td>95</td></tr>
</table>`
	out, err := HTMLTableToCSV(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "date,flux") {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2024-01,100,80" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestHTMLTableToCSVRowspan(t *testing.T) {
	html := `<table>
<tr><td rowspan="2">Q1</td><td>jan</td><td>100</td></tr>
<tr><td>fev</td><td>110</td></tr>
</table>`
	out, err := HTMLTableToCSV(html)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// Rowspan continuation cell stays empty but keeps the columns aligned.
	if lines[1] != ",fev,110" {
		t.Errorf("rowspan continuation = %q", lines[1])
	}
}

func TestHTMLTableToCSVNoTable(t *testing.T) {
	if _, err := HTMLTableToCSV("<p>hello</p>"); err == nil {
		t.Fatalf("missing table must error")
	}
}

func TestConversionCachePassthroughAndReuse(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := NewConversionCache()
	defer cache.Cleanup()

	got, err := cache.Convert(csvPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != csvPath {
		t.Errorf("CSV should pass through unchanged: %s", got)
	}
}

func TestConversionCacheConvertsHTMLOnce(t *testing.T) {
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "table.html")
	html := "<table><tr><th>a</th><th>b</th></tr><tr><td>1</td><td>2</td></tr></table>"
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := NewConversionCache()
	first, err := cache.Convert(htmlPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cache.Convert(htmlPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("conversion must happen exactly once per run: %s vs %s", first, second)
	}
	if _, err := os.Stat(first); err != nil {
		t.Fatalf("converted artifact missing: %v", err)
	}

	cache.Cleanup()
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Errorf("cleanup must delete converted artifacts")
	}
}

func TestConversionCacheUnsupportedFormat(t *testing.T) {
	cache := NewConversionCache()
	defer cache.Cleanup()
	if _, err := cache.Convert("report.pdf"); err == nil {
		t.Fatalf("unsupported formats must error")
	}
}
