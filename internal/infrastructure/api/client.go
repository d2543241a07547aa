// Package api is the HTTP client for the remote service: plain
// JSON request/response cycles, one streaming call whose body is
// consumed incrementally, and multipart file upload. The stateful
// services above it only ever see these as abstract capabilities.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lectern/lectern/internal/config"
	"github.com/lectern/lectern/internal/wire"
	"github.com/lectern/lectern/pkg/httpext"
)

type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient builds a client against the configured service URL.
func NewClient() *Client {
	return NewClientWithBase(config.GetAPIBaseURL())
}

// NewClientWithBase builds a client against an explicit base URL.
func NewClientWithBase(baseURL string) *Client {
	return &Client{
		client:  &http.Client{},
		baseURL: baseURL,
	}
}

// do performs one JSON round-trip. Non-2xx responses come back as
// *httpext.APIError with the detail payload normalized to a string.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := httpext.DecodeError(resp.StatusCode, raw)
		log.Warn().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("detail", apiErr.Detail).
			Msg("Service returned an error response")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Notes

func (c *Client) ListNotes(ctx context.Context) ([]wire.Note, error) {
	var notes []wire.Note
	if err := c.do(ctx, http.MethodGet, "/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) CreateNote(ctx context.Context, note wire.Note) (wire.Note, error) {
	var created wire.Note
	if err := c.do(ctx, http.MethodPost, "/notes", note, &created); err != nil {
		return wire.Note{}, err
	}
	return created, nil
}

func (c *Client) UpdateNote(ctx context.Context, note wire.Note) (wire.Note, error) {
	var updated wire.Note
	path := fmt.Sprintf("/notes/%d", note.ID)
	if err := c.do(ctx, http.MethodPut, path, note, &updated); err != nil {
		return wire.Note{}, err
	}
	return updated, nil
}

func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/notes/%d", id), nil, nil)
}

// Summaries

func (c *Client) ListSummaries(ctx context.Context, paperID int64) ([]wire.Summary, error) {
	var summaries []wire.Summary
	path := fmt.Sprintf("/papers/%d/summaries", paperID)
	if err := c.do(ctx, http.MethodGet, path, nil, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (c *Client) DeleteSummary(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/summaries/%d", id), nil, nil)
}

// Question sets

func (c *Client) ListQuestionSets(ctx context.Context) ([]wire.QuestionSet, error) {
	var sets []wire.QuestionSet
	if err := c.do(ctx, http.MethodGet, "/question-sets", nil, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (c *Client) CreateQuestionSet(ctx context.Context, set wire.QuestionSet) (wire.QuestionSet, error) {
	var created wire.QuestionSet
	if err := c.do(ctx, http.MethodPost, "/question-sets", set, &created); err != nil {
		return wire.QuestionSet{}, err
	}
	return created, nil
}

func (c *Client) DeleteQuestionSet(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/question-sets/%d", id), nil, nil)
}

// Q&A history

func (c *Client) ListAskEntries(ctx context.Context) ([]wire.AskEntry, error) {
	var entries []wire.AskEntry
	if err := c.do(ctx, http.MethodGet, "/ask/history", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) CreateAskEntry(ctx context.Context, entry wire.AskEntry) (wire.AskEntry, error) {
	var created wire.AskEntry
	if err := c.do(ctx, http.MethodPost, "/ask/history", entry, &created); err != nil {
		return wire.AskEntry{}, err
	}
	return created, nil
}

func (c *Client) DeleteAskEntry(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/ask/history/%d", id), nil, nil)
}

func (c *Client) ClearAskEntries(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/ask/history", nil, nil)
}

// Retrieval and chat

func (c *Client) Query(ctx context.Context, req wire.QueryRequest) (wire.QueryResponse, error) {
	var resp wire.QueryResponse
	if err := c.do(ctx, http.MethodPost, "/ask", req, &resp); err != nil {
		return wire.QueryResponse{}, err
	}
	return resp, nil
}

func (c *Client) ChatTurn(ctx context.Context, req wire.ChatTurnRequest) (wire.ChatTurnResponse, error) {
	var resp wire.ChatTurnResponse
	if err := c.do(ctx, http.MethodPost, "/agent/chat", req, &resp); err != nil {
		return wire.ChatTurnResponse{}, err
	}
	return resp, nil
}

// Papers

func (c *Client) ListPapers(ctx context.Context) ([]wire.Paper, error) {
	var papers []wire.Paper
	if err := c.do(ctx, http.MethodGet, "/papers", nil, &papers); err != nil {
		return nil, err
	}
	return papers, nil
}

func (c *Client) DeletePaper(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/papers/%d", id), nil, nil)
}
