package mapper

import (
	"strings"

	"github.com/lectern/lectern/internal/domain"
	"github.com/lectern/lectern/internal/wire"
)

// agentKeywords maps the open wire agent vocabulary onto the closed
// label set by case-insensitive substring match, in order. Unmatched
// labels default to Qwen.
var agentKeywords = []struct {
	keyword string
	label   domain.AgentLabel
}{
	{"gemini", domain.AgentGemini},
	{"gpt", domain.AgentGPT},
	{"qwen", domain.AgentQwen},
}

// Agent normalizes a free-text wire agent label ("gpt-4", "Gemini Web",
// "qwen-local", ...) into the closed canonical set.
func Agent(label string) domain.AgentLabel {
	lower := strings.ToLower(label)
	for _, k := range agentKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.label
		}
	}
	return domain.AgentQwen
}

// Summary maps a wire summary to its canonical projection.
func Summary(w wire.Summary) domain.Summary {
	return domain.Summary{
		ID:        w.ID,
		PaperID:   w.PaperID,
		Title:     w.Title,
		Content:   w.Content,
		Agent:     Agent(w.Agent),
		CreatedAt: parseTime(w.CreatedAt),
	}
}
