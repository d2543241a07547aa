package services

import (
	"github.com/rs/zerolog/log"

	"github.com/lectern/lectern/internal/config"
	"github.com/lectern/lectern/internal/domain"
	"github.com/lectern/lectern/internal/infrastructure/api"
	"github.com/lectern/lectern/internal/services/ask"
	"github.com/lectern/lectern/internal/services/conversation"
	"github.com/lectern/lectern/internal/services/library"
)

type Services struct {
	apiClient      *api.Client
	historyStore   ask.Store
	libraryService *library.Service
}

// InitializeServices initializes all required services
func InitializeServices() (*Services, error) {
	log.Info().Msg("Initializing core services")

	apiClient := api.NewClient()

	// History mirror store (Redis when configured, memory otherwise)
	historyStore := ask.NewStore()
	log.Info().Msg("Initializing history mirror store")

	libraryService := library.NewService(apiClient)
	log.Info().Msg("Initializing library service")

	log.Info().Msg("All services initialized successfully")

	return &Services{
		apiClient:      apiClient,
		historyStore:   historyStore,
		libraryService: libraryService,
	}, nil
}

// GetAPIClient returns the shared remote-service client
func (s *Services) GetAPIClient() *api.Client {
	return s.apiClient
}

// GetLibraryService returns the library service
func (s *Services) GetLibraryService() *library.Service {
	return s.libraryService
}

// NewConversation builds an assembler for a fresh conversation. Each
// conversation owns its own history and attachment set.
func (s *Services) NewConversation() *conversation.Service {
	return conversation.NewService(s.apiClient, nil)
}

// NewAskCoordinator builds a Q&A coordinator scoped to one subject.
func (s *Services) NewAskCoordinator(subjectKey string) *ask.Service {
	return ask.NewService(s.apiClient, s.historyStore, config.GetChatProvider(), subjectKey)
}

// SubjectsFor shapes an ask subject selection from the paper list and
// a selected paper id (zero means none selected).
func SubjectsFor(papers []domain.Paper, selectedID int64) ask.Subjects {
	subjects := ask.Subjects{Candidates: papers}
	for _, p := range papers {
		if p.ID == selectedID {
			subjects.Selected = p
		}
	}
	return subjects
}
