package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/moocn/pkg/errors"
)

// Format identifies a dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ignoreSuffix marks a tabular header cell as an ignored series.
const ignoreSuffix = "!"

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset extension %q", filepath.Ext(path))
}

// Decode reads a dataset in the given format from r, normalizes it and
// validates it. XLSX requires random access and is read through
// [excelize.OpenReader]. Decode does not close r.
func Decode(r io.Reader, format Format) (*Dataset, error) {
	var (
		d   *Dataset
		err error
	)
	switch format {
	case FormatJSON:
		d, err = ReadJSON(r)
	case FormatYAML:
		d, err = ReadYAML(r)
	case FormatCSV:
		d, err = ReadCSV(r)
	case FormatXLSX:
		d, err = ReadXLSX(r, "")
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format %q", format)
	}
	if err != nil {
		return nil, err
	}
	d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load reads the dataset file at path, choosing the decoder from the
// extension. The dataset name defaults to the file's base name.
func Load(path string) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// ReadJSON decodes a JSON dataset from r. See the package documentation
// for the expected shape. Null values become NaN.
func ReadJSON(r io.Reader) (*Dataset, error) {
	var d Dataset
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode json")
	}
	return &d, nil
}

// ReadYAML decodes a YAML dataset from r using the same field names as
// the JSON form.
func ReadYAML(r io.Reader) (*Dataset, error) {
	var d Dataset
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode yaml")
	}
	return &d, nil
}

// ReadCSV decodes a comma-separated table from r. Rows may have fewer
// cells than the header; missing trailing cells are missing values.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode csv")
	}
	return fromRecords(records)
}

// ReadXLSX decodes a workbook from r. sheet selects the worksheet; the
// first sheet is used when empty.
func ReadXLSX(r io.Reader, sheet string) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "open xlsx")
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "sheet %q", sheet)
	}
	d, err := fromRecords(rows)
	if err != nil {
		return nil, err
	}
	d.Name = sheet
	return d, nil
}

func fromRecords(records [][]string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "table has no header row")
	}
	header := records[0]
	if len(header) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "table needs a category column and at least one series")
	}

	d := &Dataset{Series: make([]Series, len(header)-1)}
	for i, h := range header[1:] {
		h = strings.TrimSpace(h)
		if strings.HasSuffix(h, ignoreSuffix) {
			d.Series[i].Ignore = true
			h = strings.TrimSpace(strings.TrimSuffix(h, ignoreSuffix))
		}
		d.Series[i].Name = h
	}

	labeled := false
	for r, row := range records[1:] {
		if isBlank(row) {
			continue
		}
		cat := strings.TrimSpace(row[0])
		x, err := strconv.ParseFloat(cat, 64)
		if err != nil {
			labeled = true
			x = float64(len(d.X))
		}
		d.X = append(d.X, x)
		d.Labels = append(d.Labels, cat)

		for i := range d.Series {
			v := math.NaN()
			if i+1 < len(row) {
				if cell := strings.TrimSpace(row[i+1]); cell != "" {
					v, err = strconv.ParseFloat(cell, 64)
					if err != nil {
						return nil, errors.New(errors.ErrCodeInvalidDataset, "row %d, column %q: %q is not a number", r+2, d.Series[i].Name, cell)
					}
				}
			}
			d.Series[i].Values = append(d.Series[i].Values, v)
		}
	}
	if !labeled {
		d.Labels = nil
	}
	return d, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteJSON encodes d as indented JSON.
func WriteJSON(w io.Writer, d *Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
