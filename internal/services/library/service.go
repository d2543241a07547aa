// Package library exposes the note, summary, question-set, and paper
// collections in canonical form: every list goes through the mapper so
// callers never see wire shapes.
package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/lectern/lectern/internal/domain"
	"github.com/lectern/lectern/internal/infrastructure/api"
	"github.com/lectern/lectern/internal/mapper"
	"github.com/lectern/lectern/internal/stream"
	"github.com/lectern/lectern/internal/wire"
)

type Service struct {
	api      *api.Client
	validate *validator.Validate
}

func NewService(apiClient *api.Client) *Service {
	return &Service{
		api:      apiClient,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Notes lists all notes with their inferred document types.
func (s *Service) Notes(ctx context.Context) ([]domain.Document, error) {
	notes, err := s.api.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]domain.Document, len(notes))
	for i, n := range notes {
		docs[i] = mapper.Document(n)
	}
	return docs, nil
}

func (s *Service) CreateNote(ctx context.Context, title, content string, tags []string) (domain.Document, error) {
	created, err := s.api.CreateNote(ctx, wire.Note{Title: title, Content: content, Tags: tags})
	if err != nil {
		return domain.Document{}, err
	}
	return mapper.Document(created), nil
}

func (s *Service) UpdateNote(ctx context.Context, doc domain.Document) (domain.Document, error) {
	updated, err := s.api.UpdateNote(ctx, wire.Note{
		ID:      doc.ID,
		Title:   doc.Title,
		Content: doc.Content,
		Tags:    doc.Tags,
	})
	if err != nil {
		return domain.Document{}, err
	}
	return mapper.Document(updated), nil
}

func (s *Service) DeleteNote(ctx context.Context, id int64) error {
	return s.api.DeleteNote(ctx, id)
}

// Summaries lists a paper's summaries with normalized agent labels.
func (s *Service) Summaries(ctx context.Context, paperID int64) ([]domain.Summary, error) {
	ws, err := s.api.ListSummaries(ctx, paperID)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.Summary, len(ws))
	for i, w := range ws {
		summaries[i] = mapper.Summary(w)
	}
	return summaries, nil
}

func (s *Service) DeleteSummary(ctx context.Context, id int64) error {
	return s.api.DeleteSummary(ctx, id)
}

// Papers lists uploaded papers and their indexing state.
func (s *Service) Papers(ctx context.Context) ([]domain.Paper, error) {
	ws, err := s.api.ListPapers(ctx)
	if err != nil {
		return nil, err
	}
	return mapper.Papers(ws), nil
}

func (s *Service) DeletePaper(ctx context.Context, id int64) error {
	return s.api.DeletePaper(ctx, id)
}

// Upload submits a batch of files, reporting per-file outcomes.
func (s *Service) Upload(ctx context.Context, paths []string) []api.UploadResult {
	return s.api.UploadPapers(ctx, paths)
}

// QuestionSets lists saved sets in canonical form, in server order.
// Titles are not unique, so sets are identified by their ids.
func (s *Service) QuestionSets(ctx context.Context) ([]domain.QuestionSet, error) {
	sets, err := s.api.ListQuestionSets(ctx)
	if err != nil {
		return nil, err
	}
	return mapper.QuestionSets(sets), nil
}

// SaveQuestionSet maps a canonical set back to the wire and persists
// it. An untitled or empty set is rejected before anything is sent.
func (s *Service) SaveQuestionSet(ctx context.Context, title string, paperID int64, questions []domain.Question) error {
	ws := make([]wire.Question, len(questions))
	for i, q := range questions {
		ws[i] = mapper.QuestionToWire(q)
	}
	set := wire.QuestionSet{
		Title:     title,
		PaperID:   paperID,
		Questions: ws,
	}
	if err := s.validate.Struct(set); err != nil {
		return err
	}
	_, err := s.api.CreateQuestionSet(ctx, set)
	return err
}

// GenerateQuestions runs the streamed generation cycle. onChunk
// receives incremental text as it arrives; the returned questions come
// from the terminal event, already canonical. An Error event from the
// producer surfaces verbatim.
func (s *Service) GenerateQuestions(ctx context.Context, paperID int64, count int, onChunk func(string)) ([]domain.Question, string, error) {
	req := wire.GenerateQuestionsRequest{PaperID: paperID, Count: count}
	if err := s.validate.Struct(req); err != nil {
		return nil, "", err
	}

	var (
		questions []domain.Question
		rendered  strings.Builder
		streamErr error
	)

	err := s.api.GenerateQuestionsEvents(ctx, req, func(ev stream.Event) {
		switch e := ev.(type) {
		case stream.Chunk:
			if onChunk != nil {
				onChunk(e.Content)
			}
		case stream.Complete:
			questions = make([]domain.Question, len(e.Questions))
			for i, w := range e.Questions {
				questions[i] = mapper.Question(w)
			}
			rendered.WriteString(e.RenderedText)
		case stream.Error:
			streamErr = fmt.Errorf("generation failed: %s", e.Message)
		}
	})
	if err != nil {
		return nil, "", err
	}
	if streamErr != nil {
		return nil, "", streamErr
	}

	log.Info().Int("questions", len(questions)).Int64("paper_id", paperID).Msg("Question set generated")
	return questions, rendered.String(), nil
}
