package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lectern/lectern/internal/stream"
	"github.com/lectern/lectern/internal/wire"
	"github.com/lectern/lectern/pkg/httpext"
)

// GenerateQuestions starts a streamed question-set generation and
// returns the response body for incremental consumption. The caller
// owns closing the body; stream.Consume does the framing.
func (c *Client) GenerateQuestions(ctx context.Context, req wire.GenerateQuestionsRequest) (io.ReadCloser, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/question-sets/generate", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, httpext.DecodeError(resp.StatusCode, raw)
	}
	return resp.Body, nil
}

// GenerateQuestionsEvents runs the full streamed generation cycle,
// delivering events in arrival order until the terminal event or a
// transport failure.
func (c *Client) GenerateQuestionsEvents(ctx context.Context, req wire.GenerateQuestionsRequest, fn func(stream.Event)) error {
	body, err := c.GenerateQuestions(ctx, req)
	if err != nil {
		return err
	}
	defer body.Close()
	return stream.Consume(ctx, body, fn)
}
