// Package extract turns an uploaded PDF into plain text.
//
// Pages are read in order with ledongthuc/pdf. A page that cannot be read
// contributes nothing instead of failing the whole document.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnreadable is returned when the document cannot be opened as a PDF.
	ErrUnreadable = errors.New("document is not a readable PDF")
	// ErrNoText is returned by Require when a document yields no usable text.
	ErrNoText = errors.New("the uploaded PDF contains no extractable text")
)

// PDF concatenates the text of every page of the document in page order.
// Pages that are empty, whitespace-only or fail extraction contribute nothing.
func PDF(data []byte) (text string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	var sb strings.Builder
	pageCount := reader.NumPage()
	for i := 1; i <= pageCount; i++ {
		sb.WriteString(pageText(reader.Page(i), i))
	}
	return sb.String(), nil
}

// pageText returns the plain text of one page, or "" when the page has none.
func pageText(page pdf.Page, num int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("WARN: Text extraction panicked on page %d: %v", num, r)
			text = ""
		}
	}()

	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		log.Printf("WARN: Text extraction failed on page %d: %v", num, err)
		return ""
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return text
}

// Require returns ErrNoText when text holds nothing but whitespace.
func Require(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrNoText
	}
	return nil
}

// Extractor adapts PDF to interfaces that expect a method.
type Extractor struct{}

// Extract calls PDF.
func (Extractor) Extract(data []byte) (string, error) {
	return PDF(data)
}
