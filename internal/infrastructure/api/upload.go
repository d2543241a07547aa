package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lectern/lectern/internal/wire"
	"github.com/lectern/lectern/pkg/httpext"
)

// allowedExtensions is the fixed upload allow-list.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".doc":  true,
	".docx": true,
}

// ErrUnsupportedFile rejects a file whose extension is outside the
// allow-list before any bytes are sent.
var ErrUnsupportedFile = fmt.Errorf("unsupported file type")

// UploadResult reports the outcome for one file of a batch.
type UploadResult struct {
	Path  string
	Paper wire.Paper
	Err   error
}

// UploadPaper submits one file as a multipart form with a single file
// field.
func (c *Client) UploadPaper(ctx context.Context, path string) (wire.Paper, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !allowedExtensions[ext] {
		return wire.Paper{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return wire.Paper{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/papers", pr)
	if err != nil {
		return wire.Paper{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return wire.Paper{}, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return wire.Paper{}, httpext.DecodeError(resp.StatusCode, raw)
	}

	var paper wire.Paper
	if err := json.NewDecoder(resp.Body).Decode(&paper); err != nil {
		return wire.Paper{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return paper, nil
}

// UploadPapers submits a batch. Rejected or failed files are reported
// per-file; a bad file never aborts the rest of the batch.
func (c *Client) UploadPapers(ctx context.Context, paths []string) []UploadResult {
	results := make([]UploadResult, 0, len(paths))
	for _, path := range paths {
		paper, err := c.UploadPaper(ctx, path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Upload rejected")
		}
		results = append(results, UploadResult{Path: path, Paper: paper, Err: err})
	}
	return results
}
