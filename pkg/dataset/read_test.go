package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/moocn/pkg/errors"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.json", FormatJSON, false},
		{"a.YAML", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"dir/a.csv", FormatCSV, false},
		{"a.xlsx", FormatXLSX, false},
		{"a.txt", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	src := `{
		"labels": ["Mon", "Tue", "Wed"],
		"series": [
			{"name": "desktop", "values": [10, 20, null]},
			{"name": "trend", "values": [1, 2, 3], "ignore": true}
		]
	}`
	d, err := Decode(strings.NewReader(src), FormatJSON)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Len() != 3 || d.X[1] != 1 {
		t.Errorf("X = %v", d.X)
	}
	if !Missing(d.Series[0].Values[2]) {
		t.Error("null should decode as missing")
	}
	if !d.Series[1].Ignore {
		t.Error("ignore flag lost")
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		format Format
	}{
		{"bad json", `{`, FormatJSON},
		{"bad yaml", "series: [", FormatYAML},
		{"unordered", `{"x":[2,1],"series":[]}`, FormatJSON},
		{"csv no series", "x\n1\n", FormatCSV},
		{"csv bad number", "x,a\n1,foo\n", FormatCSV},
		{"unknown format", "", Format("toml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.src), tt.format); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestReadCSV(t *testing.T) {
	src := "day,desktop,mobile,trend!\nMon,10,5,7\nTue,,8,14\n\nWed,30\n"
	d, err := Decode(strings.NewReader(src), FormatCSV)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Len() != 3 {
		t.Fatalf("Len = %d", d.Len())
	}
	if d.Label(2) != "Wed" || d.X[2] != 2 {
		t.Errorf("category 2 = %q at %v", d.Label(2), d.X[2])
	}
	if !Missing(d.Series[0].Values[1]) {
		t.Error("empty cell should be missing")
	}
	if !Missing(d.Series[1].Values[2]) {
		t.Error("short row should pad with missing values")
	}
	if d.Series[2].Name != "trend" || !d.Series[2].Ignore {
		t.Errorf("series 3 = %+v", d.Series[2])
	}
}

func TestReadCSVNumericCategories(t *testing.T) {
	d, err := Decode(strings.NewReader("x,a\n0,1\n2.5,2\n4,3\n"), FormatCSV)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Labels != nil {
		t.Errorf("Labels = %v, want nil", d.Labels)
	}
	if d.X[1] != 2.5 {
		t.Errorf("X = %v", d.X)
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	f.SetCellValue(sheet, "A1", "month")
	f.SetCellValue(sheet, "B1", "sales")
	f.SetCellValue(sheet, "C1", "returns")
	f.SetCellValue(sheet, "A2", "Jan")
	f.SetCellValue(sheet, "B2", 100)
	f.SetCellValue(sheet, "C2", 4)
	f.SetCellValue(sheet, "A3", "Feb")
	f.SetCellValue(sheet, "B3", 120.5)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	d, err := Decode(&buf, FormatXLSX)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Name != sheet {
		t.Errorf("Name = %q", d.Name)
	}
	if d.Len() != 2 || d.Series[0].Values[1] != 120.5 {
		t.Errorf("got %+v", d)
	}
	if !Missing(d.Series[1].Values[1]) {
		t.Error("empty cell should be missing")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weekly.yaml")
	src := "x: [0, 1]\nseries:\n  - name: a\n    values: [1, null]\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Name != "weekly" {
		t.Errorf("Name = %q, want weekly", d.Name)
	}

	_, err = Load(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}
