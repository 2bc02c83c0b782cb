package ocr

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// A text layer shorter than this is treated as an image-based scan
const minTextChars = 100

var ErrNoExtractor = errors.New("no extraction method available for document")

// Client implements Provider with a local-first cascade: the embedded PDF
// text layer when it is usable, the remote OCR service otherwise, and a
// CSV passthrough for already-structured exports.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	breaker    *Breaker
	remoteURL  string
}

// NewClient creates an extraction client. remoteURL may be empty, in which
// case scanned PDFs fail instead of being OCRed.
func NewClient(remoteURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
		breaker:    NewBreaker(DefaultBreakerConfig()),
		remoteURL:  strings.TrimSuffix(remoteURL, "/"),
	}
}

// Extract routes the file to the right extraction path by extension
func (c *Client) Extract(ctx context.Context, path string) (*Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return c.extractCSV(path)
	default:
		return c.extractPDF(ctx, path)
	}
}

func (c *Client) extractPDF(ctx context.Context, path string) (*Document, error) {
	text, pages, err := extractPDFText(path)
	if err == nil && len(strings.TrimSpace(text)) >= minTextChars {
		c.logger.Info("extracted embedded text layer",
			"path", filepath.Base(path),
			"chars", len(text),
			"pages", pages)
		return &Document{Text: text, Method: MethodPDFText, Pages: pages}, nil
	}
	if err != nil {
		c.logger.Warn("embedded text extraction failed", "path", filepath.Base(path), "error", err)
	} else {
		c.logger.Info("text layer too short, treating as scanned document",
			"path", filepath.Base(path),
			"chars", len(strings.TrimSpace(text)))
	}

	if c.remoteURL == "" {
		return nil, ErrNoExtractor
	}
	return c.extractRemote(ctx, path)
}

// extractRemote sends the document through the breaker-guarded OCR upload
// and decodes the {text, tables, pages} response
func (c *Client) extractRemote(ctx context.Context, path string) (*Document, error) {
	if !c.breaker.Allow() {
		return nil, ErrServiceUnavailable
	}

	doc, err := c.uploadRemote(ctx, path)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, err
	}
	c.breaker.RecordSuccess()
	return doc, nil
}

func (c *Client) uploadRemote(ctx context.Context, path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("buffering document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.remoteURL+"/ocr", &buf)
	if err != nil {
		return nil, fmt.Errorf("building OCR request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling OCR service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OCR service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Text   string       `json:"text"`
		Tables [][][]string `json:"tables"`
		Pages  int          `json:"pages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding OCR response: %w", err)
	}

	c.logger.Info("remote OCR complete",
		"path", filepath.Base(path),
		"chars", len(payload.Text),
		"tables", len(payload.Tables))

	return &Document{
		Text:   payload.Text,
		Tables: payload.Tables,
		Method: MethodRemoteOCR,
		Pages:  payload.Pages,
	}, nil
}

// extractCSV reads the file as one table grid, header row included
func (c *Client) extractCSV(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("CSV file is empty")
	}

	c.logger.Info("parsed CSV document", "path", filepath.Base(path), "rows", len(rows))

	return &Document{
		Tables: [][][]string{rows},
		Method: MethodCSV,
		Pages:  1,
	}, nil
}
