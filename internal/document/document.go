// Package document inspects attached files locally before they are submitted.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxFileSize caps the size of a file submission
const MaxFileSize = 32 << 20

// ErrNotPDF is returned when the blob does not carry a PDF header
var ErrNotPDF = errors.New("not a PDF document")

// Info describes a PDF attachment
type Info struct {
	Name  string
	Size  int
	Pages int
}

// IsPDF reports whether blob starts with the PDF magic bytes
func IsPDF(blob []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(blob, "\x00\t\r\n "), []byte("%PDF-"))
}

// HasPDFExtension reports whether name ends with .pdf
func HasPDFExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// Inspect returns the page count of a PDF blob
func Inspect(name string, blob []byte) (info Info, err error) {
	info = Info{Name: filepath.Base(name), Size: len(blob)}

	r, err := open(blob)
	if err != nil {
		return info, err
	}

	defer recoverParse(&err)
	info.Pages = r.NumPage()
	return info, nil
}

// Text extracts the plain text of every page, pages separated by newlines
func Text(blob []byte) (text string, err error) {
	r, err := open(blob)
	if err != nil {
		return "", err
	}

	defer recoverParse(&err)

	var sb strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		if pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func open(blob []byte) (r *pdf.Reader, err error) {
	if !IsPDF(blob) {
		return nil, ErrNotPDF
	}

	// The parser panics on some malformed inputs
	defer recoverParse(&err)

	r, err = pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return r, nil
}

func recoverParse(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("failed to parse PDF: %v", r)
	}
}

// ReadAll reads a file body with a size cap
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return data, nil
}
