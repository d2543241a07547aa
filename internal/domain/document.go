package domain

import "time"

// DocumentType classifies a note for display. The wire never transmits
// it; the mapper infers it from tags and title in a fixed precedence
// order.
type DocumentType string

const (
	DocSummary     DocumentType = "summary"
	DocQASet       DocumentType = "qa_set"
	DocRAGResponse DocumentType = "rag_response"
	DocManual      DocumentType = "manual"
)

// Document is the canonical projection of a wire note.
type Document struct {
	ID        int64
	Title     string
	Content   string
	Tags      []string
	Type      DocumentType
	CreatedAt time.Time
	UpdatedAt time.Time
}
