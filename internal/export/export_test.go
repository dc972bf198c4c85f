package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/kwintel/internal/types"
)

func TestToCSV(t *testing.T) {
	tests := []struct {
		name   string
		result *types.ExtractionResult
		want   string
	}{
		{
			name:   "rule list longer",
			result: &types.ExtractionResult{RuleKeywords: []string{"a", "b", "c"}, MLKeywords: []string{"x", "y"}},
			want:   "Rule-Based Keywords,ML-Based Keywords\na,x\nb,y\nc,\n",
		},
		{
			name:   "ml list longer",
			result: &types.ExtractionResult{RuleKeywords: []string{"a"}, MLKeywords: []string{"x", "y"}},
			want:   "Rule-Based Keywords,ML-Based Keywords\na,x\n,y\n",
		},
		{
			name:   "both empty",
			result: &types.ExtractionResult{},
			want:   "Rule-Based Keywords,ML-Based Keywords\n",
		},
		{
			name:   "nil result",
			result: nil,
			want:   "Rule-Based Keywords,ML-Based Keywords\n",
		},
		{
			name:   "quoting",
			result: &types.ExtractionResult{RuleKeywords: []string{"new york, ny"}, MLKeywords: []string{`say "hi"`}},
			want:   "Rule-Based Keywords,ML-Based Keywords\n\"new york, ny\",\"say \"\"hi\"\"\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ToCSV(tt.result)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestToXLSX(t *testing.T) {
	data, err := ToXLSX(&types.ExtractionResult{RuleKeywords: []string{"a", "b"}, MLKeywords: []string{"x"}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"a", "x"}, rows[1])
	assert.Equal(t, "b", rows[2][0])
}

func TestToJSONAndYAML(t *testing.T) {
	r := &types.ExtractionResult{MLKeywords: []string{"ml"}, Summary: "s", Topic: []string{"tech", "science"}}

	data, err := ToJSON(r)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []interface{}{}, decoded["rule_keywords"])
	assert.Equal(t, "s", decoded["summary"])

	data, err = ToYAML(r)
	require.NoError(t, err)
	var back types.ExtractionResult
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, []string{"tech", "science"}, back.Topic)
	assert.Equal(t, "tech", back.PredictedTopic())
}

func TestBuild(t *testing.T) {
	r := &types.ExtractionResult{RuleKeywords: []string{"a"}}

	a, err := Build("csv", r)
	require.NoError(t, err)
	assert.Equal(t, CSVFilename, a.Filename)
	assert.Equal(t, CSVMIME, a.MIME)

	a, err = Build("XLSX", r)
	require.NoError(t, err)
	assert.Equal(t, XLSXFilename, a.Filename)

	_, err = Build("pdf", r)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDeliver_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	a := Artifact{Filename: CSVFilename, MIME: CSVMIME, Data: []byte("first")}

	p1, err := Deliver(dir, a)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "keywords.csv"), p1)

	a.Data = []byte("second")
	p2, err := Deliver(dir, a)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "keywords (1).csv"), p2)

	p3, err := Deliver(dir, a)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "keywords (2).csv"), p3)

	data, err := os.ReadFile(p1)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestDeliver_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	p, err := Deliver(dir, Artifact{Filename: CSVFilename, Data: []byte("x")})
	require.NoError(t, err)
	assert.FileExists(t, p)
}
