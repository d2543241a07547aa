package domain

import "time"

// AgentLabel is the closed set of agents a summary can be attributed
// to. Wire labels are free text and normalize into this set.
type AgentLabel string

const (
	AgentGemini AgentLabel = "Gemini"
	AgentGPT    AgentLabel = "GPT"
	AgentQwen   AgentLabel = "Qwen"
)

// Summary is the canonical projection of a wire summary.
type Summary struct {
	ID        int64
	PaperID   int64
	Title     string
	Content   string
	Agent     AgentLabel
	CreatedAt time.Time
}
