// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ErrInvalidPDF is returned by PDFProbe for files that cannot be opened or
// have no readable first page.
var ErrInvalidPDF = errors.New("not a readable PDF")

// PDFProbe validates a PDF by opening it and loading its first page.
type PDFProbe struct{}

// Validate implements Validator.
func (PDFProbe) Validate(path string) (err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return fmt.Errorf("%w: no pages", ErrInvalidPDF)
	}
	if r.Page(1).V.IsNull() {
		return fmt.Errorf("%w: first page is empty", ErrInvalidPDF)
	}
	return nil
}
