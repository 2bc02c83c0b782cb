// Package ocr turns a document into raw text and table grids for the
// extraction pipeline. It prefers the embedded PDF text layer and only
// falls back to a remote OCR service for image-based scans.
package ocr

import (
	"context"
)

const (
	MethodPDFText   = "pdf_text"
	MethodRemoteOCR = "remote_ocr"
	MethodCSV       = "csv"
)

// Document is the provider output the pipeline consumes: free text and/or
// ragged table grids plus the method tag that produced them. No ordering
// or schema guarantee beyond that.
type Document struct {
	Text   string       `json:"text"`
	Tables [][][]string `json:"tables"`
	Method string       `json:"method"`
	Pages  int          `json:"pages"`
}

// Provider extracts a document from a file on disk
type Provider interface {
	Extract(ctx context.Context, path string) (*Document, error)
}
