package request

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/kwintel/internal/types"
)

func TestBuild_Text(t *testing.T) {
	in := types.NewTextInput("Machine learning is changing search.", types.Params{TopN: 7, NgramMin: 1, NgramMax: 2})

	out, err := Build(in)
	require.NoError(t, err)

	assert.Equal(t, "POST", out.Method)
	assert.Equal(t, PathExtract, out.Path)
	assert.Equal(t, "application/json", out.ContentType)
	assert.False(t, out.IsMultipart())

	var payload map[string]any
	require.NoError(t, json.Unmarshal(out.Body, &payload))
	assert.Equal(t, map[string]any{
		"text":   "Machine learning is changing search.",
		"top_n":  float64(7),
		"ng_min": float64(1),
		"ng_max": float64(2),
	}, payload)
}

func TestBuild_File(t *testing.T) {
	blob := []byte("%PDF-1.4 fake document")
	in := types.NewFileInput(blob, "/tmp/report.pdf", types.Params{TopN: 12, NgramMin: 2, NgramMax: 3})

	out, err := Build(in)
	require.NoError(t, err)

	assert.Equal(t, PathExtractPDF, out.Path)
	assert.True(t, out.IsMultipart())

	mediaType, params, err := mime.ParseMediaType(out.ContentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	reader := multipart.NewReader(bytes.NewReader(out.Body), params["boundary"])
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)

	assert.Equal(t, []string{"12"}, form.Value["top_n"])
	assert.Equal(t, []string{"2"}, form.Value["ng_min"])
	assert.Equal(t, []string{"3"}, form.Value["ng_max"])
	assert.NotContains(t, form.Value, "text")

	require.Len(t, form.File["file"], 1)
	fh := form.File["file"][0]
	assert.Equal(t, "report.pdf", fh.Filename)
	assert.Equal(t, "application/pdf", fh.Header.Get("Content-Type"))

	f, err := fh.Open()
	require.NoError(t, err)
	defer f.Close()
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, blob, got)
}

func TestBuild_FileIgnoresText(t *testing.T) {
	in := types.NewFileInput([]byte("data"), "a.pdf", types.DefaultParams())
	in.Body = "stray text that must not be sent"

	out, err := Build(in)
	require.NoError(t, err)
	assert.NotContains(t, string(out.Body), "stray text")
}

func TestBuild_UnknownKind(t *testing.T) {
	_, err := Build(types.SubmissionInput{Kind: types.InputKind(42)})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", contentTypeFor("paper.PDF"))
	assert.Equal(t, "application/pdf", contentTypeFor("noext"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("blob.zzzunknown"))
}
