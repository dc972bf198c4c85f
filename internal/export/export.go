// Package export renders extraction results into downloadable artifacts.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/kwintel/internal/types"
)

// Artifact names and MIME types
const (
	CSVFilename  = "keywords.csv"
	CSVMIME      = "text/csv"
	XLSXFilename = "keywords.xlsx"
	XLSXMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	JSONFilename = "analysis.json"
	JSONMIME     = "application/json"
	YAMLFilename = "analysis.yaml"
	YAMLMIME     = "application/yaml"

	SheetName = "Keywords"
)

// Header is the first row of the keyword table
var Header = []string{"Rule-Based Keywords", "ML-Based Keywords"}

// ErrUnsupportedFormat is returned for an unknown export format
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Artifact is a named file ready to be written
type Artifact struct {
	Filename string
	MIME     string
	Data     []byte
}

// Rows zips rule and ML keywords to the length of the longer list, padding with ""
func Rows(r *types.ExtractionResult) [][]string {
	if r == nil {
		return nil
	}
	n := max(len(r.RuleKeywords), len(r.MLKeywords))
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		rows[i] = []string{at(r.RuleKeywords, i), at(r.MLKeywords, i)}
	}
	return rows
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

// ToCSV renders the keyword table as CSV. Fields are quoted only when needed.
func ToCSV(r *types.ExtractionResult) ([]byte, error) {
	records := append([][]string{Header}, Rows(r)...)

	var buf bytes.Buffer
	if err := csv.NewWriter(&buf).WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ToXLSX renders the keyword table as a spreadsheet
func ToXLSX(r *types.ExtractionResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := append([][]string{Header}, Rows(r)...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell name: %w", err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ToJSON renders the full result as indented JSON
func ToJSON(r *types.ExtractionResult) ([]byte, error) {
	data, err := json.MarshalIndent(normalize(r), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ToYAML renders the full result as YAML
func ToYAML(r *types.ExtractionResult) ([]byte, error) {
	data, err := yaml.Marshal(normalize(r))
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return data, nil
}

// normalize replaces missing lists with empty ones so output shape is stable
func normalize(r *types.ExtractionResult) *types.ExtractionResult {
	out := r.Clone()
	if out == nil {
		out = &types.ExtractionResult{}
	}
	for _, s := range []*[]string{&out.RuleKeywords, &out.MLKeywords, &out.Phrases, &out.Topic} {
		if *s == nil {
			*s = []string{}
		}
	}
	return out
}

// Build renders r in the named format: csv, xlsx, json or yaml
func Build(format string, r *types.ExtractionResult) (Artifact, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv", "":
		data, err := ToCSV(r)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Filename: CSVFilename, MIME: CSVMIME, Data: data}, nil
	case "xlsx":
		data, err := ToXLSX(r)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Filename: XLSXFilename, MIME: XLSXMIME, Data: data}, nil
	case "json":
		data, err := ToJSON(r)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Filename: JSONFilename, MIME: JSONMIME, Data: data}, nil
	case "yaml", "yml":
		data, err := ToYAML(r)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Filename: YAMLFilename, MIME: YAMLMIME, Data: data}, nil
	default:
		return Artifact{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Deliver writes the artifact into dir and returns the path written.
// Existing files are never overwritten; "name (1).ext" style names are used instead.
func Deliver(dir string, a Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	ext := filepath.Ext(a.Filename)
	stem := strings.TrimSuffix(a.Filename, ext)

	for i := 0; ; i++ {
		name := a.Filename
		if i > 0 {
			name = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", name, err)
		}

		if _, err := f.Write(a.Data); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to write %s: %w", name, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close %s: %w", name, err)
		}
		return path, nil
	}
}
