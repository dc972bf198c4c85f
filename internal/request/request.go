package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/studiowebux/kwintel/internal/types"
)

// Service endpoints
const (
	PathExtract    = "/extract"
	PathExtractPDF = "/extract_pdf"
	PathHealth     = "/"
)

// Form and JSON field names understood by the service
const (
	FieldText     = "text"
	FieldFile     = "file"
	FieldTopN     = "top_n"
	FieldNgramMin = "ng_min"
	FieldNgramMax = "ng_max"
)

// ErrUnknownKind is returned for an input that is neither text nor file
var ErrUnknownKind = errors.New("unknown input kind")

// Outbound is a fully encoded request ready to be sent to the service
type Outbound struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// IsMultipart reports whether the request is a file upload
func (o *Outbound) IsMultipart() bool {
	return strings.HasPrefix(o.ContentType, "multipart/")
}

// extractPayload is the JSON body of a text submission
type extractPayload struct {
	Text     string `json:"text"`
	TopN     int    `json:"top_n"`
	NgramMin int    `json:"ng_min"`
	NgramMax int    `json:"ng_max"`
}

// Build encodes the input as exactly one request shape.
// Text inputs become a JSON body; file inputs become a multipart upload.
func Build(in types.SubmissionInput) (*Outbound, error) {
	switch in.Kind {
	case types.InputText:
		return buildText(in)
	case types.InputFile:
		return buildFile(in)
	default:
		return nil, fmt.Errorf("failed to build request: %w", ErrUnknownKind)
	}
}

func buildText(in types.SubmissionInput) (*Outbound, error) {
	body, err := json.Marshal(extractPayload{
		Text:     in.Body,
		TopN:     in.Params.TopN,
		NgramMin: in.Params.NgramMin,
		NgramMax: in.Params.NgramMax,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	return &Outbound{
		Method:      "POST",
		Path:        PathExtract,
		ContentType: "application/json",
		Body:        body,
	}, nil
}

func buildFile(in types.SubmissionInput) (*Outbound, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := in.Name
	if name == "" {
		name = "document.pdf"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldFile, escapeQuotes(name)))
	header.Set("Content-Type", contentTypeFor(name))

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(in.Blob); err != nil {
		return nil, fmt.Errorf("failed to write file part: %w", err)
	}

	fields := []struct {
		name  string
		value int
	}{
		{FieldTopN, in.Params.TopN},
		{FieldNgramMin, in.Params.NgramMin},
		{FieldNgramMax, in.Params.NgramMax},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, strconv.Itoa(f.value)); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return &Outbound{
		Method:      "POST",
		Path:        PathExtractPDF,
		ContentType: w.FormDataContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// contentTypeFor guesses the part content type from the file extension
func contentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".pdf" || ext == "" {
		return "application/pdf"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
