// Package extract asks a vision-capable model for one partial school record
// per PDF page. Pages are independent, so they are extracted concurrently;
// results are handed back in page order for folding.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"rsc.io/pdf"

	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/errors"
)

// Extractor returns the partial record found on one page.
type Extractor interface {
	ExtractPage(ctx context.Context, page Page) (json.RawMessage, error)
}

// ExtractorFunc adapts a function to an Extractor.
type ExtractorFunc func(ctx context.Context, page Page) (json.RawMessage, error)

// ExtractPage implements Extractor.
func (f ExtractorFunc) ExtractPage(ctx context.Context, page Page) (json.RawMessage, error) {
	return f(ctx, page)
}

// Document is a PDF loaded into memory.
type Document struct {
	Name  string
	Data  []byte
	Pages int
}

// Page is one extraction request.
type Page struct {
	Document string
	Data     []byte
	Number   int // 1-based
	Total    int

	// Previous holds the earlier responses for this page when the model
	// asked to continue.
	Previous []json.RawMessage
}

// LoadDocument reads the PDF at path and counts its pages.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return NewDocument(filepath.Base(path), data)
}

// NewDocument wraps PDF bytes.
func NewDocument(name string, data []byte) (*Document, error) {
	if len(data) > constants.MaxDocumentBytes {
		return nil, &errors.ValidationError{
			Field:   "document",
			Value:   len(data),
			Message: fmt.Sprintf("larger than %d bytes", constants.MaxDocumentBytes),
		}
	}
	n, err := PageCount(data)
	if err != nil {
		return nil, errors.WrapParse("pdf", name, err)
	}
	return &Document{Name: name, Data: data, Pages: n}, nil
}

// PageCount returns the number of pages in a PDF.
func PageCount(data []byte) (n int, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	n = r.NumPage()
	if n == 0 {
		return 0, errors.New("pdf has no pages")
	}
	return n, nil
}
