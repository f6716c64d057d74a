package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Epistemic-Technology/pdf-splitter/internal/failure"
	"github.com/Epistemic-Technology/pdf-splitter/models"
)

// headerWindow is how far into the data the %PDF- marker may appear.
const headerWindow = 1024

var errClosed = errors.New("document is closed")

// Document is a parsed PDF. Pages are extracted from the parsed model without
// re-rendering.
type Document struct {
	ctx *model.Context
}

// HasHeader reports whether data carries a PDF header near its start.
func HasHeader(data []byte) bool {
	return bytes.Contains(data[:min(len(data), headerWindow)], []byte("%PDF-"))
}

// Open parses and validates data. Any failure is a ParseFailure.
func Open(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, failure.New(failure.ParseFailure, "source document is empty")
	}
	if !HasHeader(data) {
		return nil, failure.New(failure.ParseFailure, "source document is not a PDF")
	}

	conf := model.NewDefaultConfiguration()
	pdfContext, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, failure.Wrap(failure.ParseFailure, err, "failed to parse PDF")
	}
	return &Document{ctx: pdfContext}, nil
}

// PageCount returns the number of pages, or 0 once closed.
func (d *Document) PageCount() int {
	if d.ctx == nil {
		return 0
	}
	return d.ctx.PageCount
}

// ExtractPage returns page pageNum (1-based) as a standalone single-page PDF.
func (d *Document) ExtractPage(pageNum int) ([]byte, error) {
	if d.ctx == nil {
		return nil, failure.Wrap(failure.ParseFailure, errClosed, "failed to extract page")
	}
	if pageNum < 1 || pageNum > d.ctx.PageCount {
		return nil, failure.Newf(failure.ParseFailure, "page %d out of range (1-%d)", pageNum, d.ctx.PageCount)
	}

	pageReader, err := api.ExtractPage(d.ctx, pageNum)
	if err != nil {
		return nil, failure.Wrap(failure.ParseFailure, err, fmt.Sprintf("failed to extract page %d", pageNum))
	}
	pageData, err := io.ReadAll(pageReader)
	if err != nil {
		return nil, failure.Wrap(failure.ParseFailure, err, fmt.Sprintf("failed to serialize page %d", pageNum))
	}
	return pageData, nil
}

// Close releases the parsed model. It is safe to call more than once.
func (d *Document) Close() error {
	d.ctx = nil
	return nil
}

// Splitter splits PDFs into single-page PDFs with pdfcpu.
type Splitter struct{}

// NewSplitter creates a Splitter.
func NewSplitter() *Splitter {
	return &Splitter{}
}

// Split returns a single-pass sequence of the pages of src in ascending order.
// The source is parsed when the sequence is first pulled; a parse or extraction
// failure is yielded once as the error and ends the sequence. The parsed
// document is closed however iteration ends.
func (s *Splitter) Split(src models.SourceDocument) iter.Seq2[models.PageDocument, error] {
	consumed := false
	return func(yield func(models.PageDocument, error) bool) {
		if consumed {
			yield(models.PageDocument{}, failure.Newf(failure.Internal, "pages of %s were already consumed", src.Name))
			return
		}
		consumed = true

		doc, err := Open(src.Data)
		if err != nil {
			yield(models.PageDocument{}, err)
			return
		}
		defer doc.Close()

		for i := range doc.PageCount() {
			pageData, err := doc.ExtractPage(i + 1)
			if err != nil {
				yield(models.PageDocument{}, err)
				return
			}
			if !yield(models.PageDocument{Index: i, Data: pageData}, nil) {
				return
			}
		}
	}
}

// PageCount parses data and returns its page count.
func PageCount(data []byte) (int, error) {
	doc, err := Open(data)
	if err != nil {
		return 0, err
	}
	defer doc.Close()
	return doc.PageCount(), nil
}

// Count returns the page count of src without extracting any page.
func (s *Splitter) Count(src models.SourceDocument) (int, error) {
	return PageCount(src.Data)
}
