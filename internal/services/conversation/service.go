// Package conversation assembles the agent chat exchange: it owns the
// durable message history sent back to the server on every turn, the
// pending attachment set, and the display projection derived from both.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/lectern/lectern/internal/domain"
	"github.com/lectern/lectern/internal/wire"
)

const previewLength = 200

// ErrTurnInFlight rejects a submission while a prior turn is still
// unresolved. Turns within one conversation are strictly serialized.
var ErrTurnInFlight = errors.New("a turn is already in flight for this conversation")

// TurnSender performs one agent chat round-trip.
type TurnSender interface {
	ChatTurn(ctx context.Context, req wire.ChatTurnRequest) (wire.ChatTurnResponse, error)
}

type Service struct {
	mu          sync.Mutex
	sender      TurnSender
	validate    *validator.Validate
	welcome     func() string
	history     []openai.ChatCompletionMessage
	attachments []domain.ChatAttachment
	sending     bool
	lastErr     string
}

// NewService builds an assembler for one conversation. welcome
// generates the synthetic greeting the display projection prepends; it
// is regenerated on every projection, never stored.
func NewService(sender TurnSender, welcome func() string) *Service {
	if welcome == nil {
		welcome = defaultWelcome
	}
	return &Service{
		sender:   sender,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		welcome:  welcome,
	}
}

func defaultWelcome() string {
	return "Hi! I'm your study assistant. Ask me about your papers, notes, or anything you're working on."
}

// AddAttachment registers an ephemeral file hint for the next turn and
// returns it. Only the id, filename, size, and a short preview travel
// to the server; the attachment is cleared after the next successful
// send.
func (s *Service) AddAttachment(filename, content string) domain.ChatAttachment {
	preview := content
	if runes := []rune(content); len(runes) > previewLength {
		preview = string(runes[:previewLength])
	}

	att := domain.ChatAttachment{
		ID:        uuid.New().String(),
		Filename:  filename,
		CharCount: len([]rune(content)),
		Preview:   preview,
	}

	s.mu.Lock()
	s.attachments = append(s.attachments, att)
	s.mu.Unlock()
	return att
}

// Attachments returns the pending attachment set.
func (s *Service) Attachments() []domain.ChatAttachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatAttachment, len(s.attachments))
	copy(out, s.attachments)
	return out
}

// Submit runs one turn: the user message is appended to durable
// history, pending attachments ride along as a single synthetic
// tool-role message for this turn only, and the full durable history is
// sent. On success the server-returned history replaces the durable
// copy verbatim and attachments clear; on failure durable history rolls
// back to its pre-turn value and the error shows up in the display
// projection alone. An empty submission with no attachments is a no-op.
func (s *Service) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return ErrTurnInFlight
	}
	if text == "" && len(s.attachments) == 0 {
		s.mu.Unlock()
		return nil
	}

	s.sending = true
	prevLen := len(s.history)
	s.history = append(s.history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	outgoing := make([]openai.ChatCompletionMessage, 0, len(s.history)+1)
	if len(s.attachments) > 0 {
		outgoing = append(outgoing, attachmentMessage(s.attachments))
	}
	outgoing = append(outgoing, s.history...)
	s.mu.Unlock()

	req := wire.ChatTurnRequest{Messages: outgoing}
	if err := s.validate.Struct(req); err != nil {
		s.finishTurn(nil, prevLen, err)
		return err
	}

	resp, err := s.sender.ChatTurn(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("Chat turn failed")
		s.finishTurn(nil, prevLen, err)
		return err
	}

	s.finishTurn(resp.Messages, prevLen, nil)
	return nil
}

// finishTurn applies the terminal transition of one Sending state.
func (s *Service) finishTurn(serverHistory []openai.ChatCompletionMessage, prevLen int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sending = false

	if err != nil {
		// Roll durable history back to the last stable value; the
		// failure is a display concern only, so the record sent on the
		// next turn is not corrupted. Attachments stay pending.
		s.history = s.history[:prevLen]
		s.lastErr = err.Error()
		return
	}

	s.history = serverHistory
	s.attachments = nil
	s.lastErr = ""
}

// attachmentMessage serializes the pending attachments into one
// synthetic tool-role message. It is prepended to the outgoing history
// for this turn and never stored for replay.
func attachmentMessage(atts []domain.ChatAttachment) openai.ChatCompletionMessage {
	payload, _ := json.Marshal(struct {
		Attachments []domain.ChatAttachment `json:"attachments"`
	}{Attachments: atts})

	return openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleTool,
		Content: string(payload),
	}
}

// History returns the durable agent history as last confirmed or
// assembled. Callers must not mutate it; only this service's own
// transitions write it.
func (s *Service) History() []openai.ChatCompletionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]openai.ChatCompletionMessage, len(s.history))
	copy(out, s.history)
	return out
}

// Display is the pure UI projection: durable history filtered to user
// and assistant roles, prefixed by the regenerated welcome message,
// with the last turn's failure (if any) appended as an assistant-role
// notice that never touches durable history.
func (s *Service) Display() []domain.DisplayMessage {
	s.mu.Lock()
	history := make([]openai.ChatCompletionMessage, len(s.history))
	copy(history, s.history)
	lastErr := s.lastErr
	s.mu.Unlock()

	out := []domain.DisplayMessage{{
		Role:    openai.ChatMessageRoleAssistant,
		Content: s.welcome(),
	}}
	for _, msg := range history {
		if msg.Role != openai.ChatMessageRoleUser && msg.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		out = append(out, domain.DisplayMessage{Role: msg.Role, Content: msg.Content})
	}
	if lastErr != "" {
		out = append(out, domain.DisplayMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: "Something went wrong: " + lastErr,
		})
	}
	return out
}
