// Package ask coordinates the retrieval Q&A cycle: query, optimistic
// display, best-effort persistence, and the history list for the
// currently selected subject.
package ask

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lectern/lectern/internal/domain"
	"github.com/lectern/lectern/internal/mapper"
	"github.com/lectern/lectern/internal/wire"
)

var (
	// ErrSubjectNotReady rejects a selected-scope ask whose subject is
	// not indexed yet.
	ErrSubjectNotReady = errors.New("selected paper is not indexed yet")
	// ErrNoSubjectsReady rejects an all-scope ask when nothing can
	// answer.
	ErrNoSubjectsReady = errors.New("no indexed papers available")
	// ErrUnknownEntry reports a delete for a handle this coordinator
	// does not hold.
	ErrUnknownEntry = errors.New("unknown history entry")
)

// Client is the remote surface the coordinator needs.
type Client interface {
	Query(ctx context.Context, req wire.QueryRequest) (wire.QueryResponse, error)
	CreateAskEntry(ctx context.Context, entry wire.AskEntry) (wire.AskEntry, error)
	DeleteAskEntry(ctx context.Context, id int64) error
	ClearAskEntries(ctx context.Context) error
}

// Subjects names the papers a query may target: the selected one and
// the full candidate set, passed explicitly per call so independent
// coordinators can coexist without hidden coupling.
type Subjects struct {
	Selected   domain.Paper
	Candidates []domain.Paper
}

// Result is the outcome of one ask. PersistErr is reported separately
// from the query outcome: when set, Entry stayed visible as a
// client-only record and is never retried. Warning surfaces partial
// readiness under all-scope without blocking the answer.
type Result struct {
	Entry      domain.AskEntry
	Warning    string
	PersistErr error
}

type askRequest struct {
	Question string `validate:"required"`
	Scope    string `validate:"oneof=selected all"`
}

type Service struct {
	mu       sync.Mutex
	client   Client
	store    Store
	validate *validator.Validate
	provider string
	subject  string
	entries  []domain.AskEntry
}

// NewService builds a coordinator for one subject. subjectKey scopes
// the mirror store snapshot; store may be nil to disable mirroring.
func NewService(client Client, store Store, provider, subjectKey string) *Service {
	return &Service{
		client:   client,
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		provider: provider,
		subject:  subjectKey,
	}
}

// Ask runs one query cycle. The optimistic entry becomes visible the
// moment the answer arrives; a successful persist promotes it in place
// (matched by its stable local handle, never by content); a failed
// persist leaves it as the permanent client-only record.
func (s *Service) Ask(ctx context.Context, question string, scope domain.Scope, subjects Subjects) (Result, error) {
	if err := s.validate.Struct(askRequest{Question: question, Scope: string(scope)}); err != nil {
		return Result{}, err
	}

	paperIDs, warning, err := resolveSubjects(scope, subjects)
	if err != nil {
		return Result{}, err
	}

	resp, err := s.client.Query(ctx, wire.QueryRequest{
		Question: question,
		Scope:    string(scope),
		PaperIDs: paperIDs,
	})
	if err != nil {
		return Result{}, fmt.Errorf("query failed: %w", err)
	}

	entry := domain.AskEntry{
		LocalID:   uuid.New().String(),
		Question:  question,
		Answer:    resp.Answer,
		Sources:   mapper.Sources(resp.Sources),
		Scope:     scope,
		Provider:  s.provider,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	s.mirror(ctx)

	result := Result{Entry: entry, Warning: warning}

	persisted, err := s.client.CreateAskEntry(ctx, mapper.AskEntryToWire(entry))
	if err != nil {
		// The answer stays visible; only the save failed, and it is
		// not retried.
		log.Warn().Err(err).Str("entry", entry.LocalID).Msg("Failed to persist history entry")
		result.PersistErr = err
		return result, nil
	}

	if promoted, ok := s.promote(entry.LocalID, persisted); ok {
		result.Entry = promoted
		s.mirror(ctx)
	}
	return result, nil
}

// resolveSubjects checks readiness preconditions and picks target
// papers. Partial readiness under all-scope is allowed and surfaced as
// a warning, not a block.
func resolveSubjects(scope domain.Scope, subjects Subjects) ([]int64, string, error) {
	if scope == domain.ScopeSelected {
		if !subjects.Selected.Ready() {
			return nil, "", ErrSubjectNotReady
		}
		return []int64{subjects.Selected.ID}, "", nil
	}

	ready := make([]int64, 0, len(subjects.Candidates))
	for _, p := range subjects.Candidates {
		if p.Ready() {
			ready = append(ready, p.ID)
		}
	}
	if len(ready) == 0 {
		return nil, "", ErrNoSubjectsReady
	}

	warning := ""
	if len(ready) < len(subjects.Candidates) {
		warning = fmt.Sprintf("answering from %d of %d papers; the rest are still indexing", len(ready), len(subjects.Candidates))
	}
	return ready, warning, nil
}

// promote replaces the optimistic entry matched by its local handle
// with the server-assigned identity. A missing handle means the entry
// was deleted while the save was in flight; the completion is then a
// no-op, which keeps out-of-order completions idempotent against the
// displayed state.
func (s *Service) promote(localID string, persisted wire.AskEntry) (domain.AskEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].LocalID != localID {
			continue
		}
		confirmed := mapper.AskEntry(persisted)
		confirmed.LocalID = localID
		s.entries[i] = confirmed
		return confirmed, true
	}
	return domain.AskEntry{}, false
}

// Entries returns the history list in creation order.
func (s *Service) Entries() []domain.AskEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AskEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Delete removes one entry by its local handle. Persisted entries are
// deleted on the server by their server identity first; an entry that
// was never persisted is removed locally only, and any in-flight save
// completion for it becomes a no-op.
func (s *Service) Delete(ctx context.Context, localID string) error {
	s.mu.Lock()
	idx := -1
	var entry domain.AskEntry
	for i := range s.entries {
		if s.entries[i].LocalID == localID {
			idx = i
			entry = s.entries[i]
			break
		}
	}
	s.mu.Unlock()

	if idx < 0 {
		return ErrUnknownEntry
	}

	if entry.Persisted() {
		if err := s.client.DeleteAskEntry(ctx, entry.ServerID); err != nil {
			return err
		}
	}

	s.mu.Lock()
	for i := range s.entries {
		if s.entries[i].LocalID == localID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.mirror(ctx)
	return nil
}

// Clear bulk-deletes the persisted entries. Client-only entries (saves
// that failed or have not completed) are untouched; they were never on
// the server.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.client.ClearAskEntries(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !e.Persisted() {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.mu.Unlock()
	s.mirror(ctx)
	return nil
}

// Restore loads the mirrored history snapshot for this subject.
func (s *Service) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	entries, err := s.store.Load(ctx, s.subject)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// mirror snapshots the entry list into the store, best effort.
func (s *Service) mirror(ctx context.Context) {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	entries := make([]domain.AskEntry, len(s.entries))
	copy(entries, s.entries)
	s.mu.Unlock()

	if err := s.store.Save(ctx, s.subject, entries); err != nil {
		log.Warn().Err(err).Str("subject", s.subject).Msg("Failed to mirror history snapshot")
	}
}
