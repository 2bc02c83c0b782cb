package ocr

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDFText reads the embedded text layer of a PDF, page by page.
// Row-based extraction preserves statement layout best; plain-text
// extraction is the backstop for PDFs whose content streams the row
// walker cannot handle. The library panics on some malformed files, so
// the whole pass runs under a recover.
func extractPDFText(path string) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library crashed: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	pages = reader.NumPage()
	if pages == 0 {
		return "", 0, fmt.Errorf("pdf has no pages")
	}

	var out []string
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		if pageText := extractPageRows(page); pageText != "" {
			out = append(out, pageText)
		}
	}

	if len(out) > 0 {
		return strings.Join(out, "\n\n"), pages, nil
	}

	// Fall back to whole-document plain text
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", pages, fmt.Errorf("extracting plain text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", pages, fmt.Errorf("reading plain text: %w", err)
	}
	return strings.TrimSpace(buf.String()), pages, nil
}

// extractPageRows joins the page's text rows top to bottom
func extractPageRows(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}
	var lines []string
	for _, row := range rows {
		var parts []string
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
