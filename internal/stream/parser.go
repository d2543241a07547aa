package stream

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lectern/lectern/internal/wire"
)

const (
	fieldPrefix    = "data:"
	frameDelimiter = "\n\n"
)

// framePayload is the JSON body of one data line. Type selects which
// fields are meaningful.
type framePayload struct {
	Type         string          `json:"type"`
	Content      string          `json:"content,omitempty"`
	Questions    []wire.Question `json:"questions,omitempty"`
	RenderedText string          `json:"rendered_text,omitempty"`
	RawResponse  string          `json:"raw_response,omitempty"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// Parser accumulates text fragments and emits events as complete
// frames become available. Fragments may arrive at any granularity,
// including empty or split mid-token; the parser only buffers as much
// as it needs to find the next frame delimiter.
type Parser struct {
	buf strings.Builder
}

// NewParser returns a parser with an empty buffer.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends a fragment and returns the events completed by it, in
// arrival order. A trailing partial frame stays buffered until a later
// fragment completes it; it is never emitted on its own.
func (p *Parser) Feed(fragment string) []Event {
	p.buf.WriteString(fragment)

	pending := p.buf.String()
	var events []Event
	for {
		cut := strings.Index(pending, frameDelimiter)
		if cut < 0 {
			break
		}
		frame := pending[:cut]
		pending = pending[cut+len(frameDelimiter):]
		events = append(events, p.parseFrame(frame)...)
	}

	p.buf.Reset()
	p.buf.WriteString(pending)
	return events
}

// parseFrame splits a frame into lines, keeps the data-prefixed ones,
// and decodes their payloads. A payload that fails to decode is dropped
// silently: the protocol tolerates producer-side malformed frames, and
// only an explicit error payload surfaces as an Error event. Drops are
// still logged so the tolerance stays observable.
func (p *Parser) parseFrame(frame string) []Event {
	var events []Event
	for _, line := range strings.Split(frame, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !strings.HasPrefix(line, fieldPrefix) {
			continue
		}
		raw := strings.TrimSpace(strings.TrimPrefix(line, fieldPrefix))
		if raw == "" {
			continue
		}

		var payload framePayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			log.Debug().
				Err(err).
				Int("frame_len", len(raw)).
				Msg("Dropping malformed stream frame")
			continue
		}

		if ev := payload.toEvent(); ev != nil {
			events = append(events, ev)
		}
	}
	return events
}

func (p framePayload) toEvent() Event {
	switch p.Type {
	case "chunk":
		return Chunk{Content: p.Content}
	case "complete":
		return Complete{
			Questions:    p.Questions,
			RenderedText: p.RenderedText,
			RawResponse:  p.RawResponse,
		}
	case "error":
		msg := p.Message
		if msg == "" {
			msg = p.Error
		}
		return Error{Message: msg}
	default:
		log.Debug().Str("type", p.Type).Msg("Dropping stream frame with unknown type")
		return nil
	}
}
