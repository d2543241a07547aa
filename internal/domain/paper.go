package domain

import "time"

// Paper statuses reported by the indexing pipeline.
const (
	PaperStatusPending  = "pending"
	PaperStatusIndexing = "indexing"
	PaperStatusIndexed  = "indexed"
	PaperStatusFailed   = "failed"
)

// Paper is an uploaded document and its indexing state.
type Paper struct {
	ID         int64
	Filename   string
	Title      string
	Status     string
	UploadedAt time.Time
}

// Ready reports whether the paper can answer retrieval queries.
func (p Paper) Ready() bool {
	return p.Status == PaperStatusIndexed
}

// DisplayTitle falls back to the filename when no title was extracted.
func (p Paper) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Filename
}
