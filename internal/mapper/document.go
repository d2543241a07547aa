package mapper

import (
	"strings"
	"time"

	"github.com/lectern/lectern/internal/domain"
	"github.com/lectern/lectern/internal/wire"
)

// typeRules drive document-type inference in precedence order. A note
// matches a rule when it carries the tag or its title starts with the
// prefix; the first match wins and anything else is a manual note.
var typeRules = []struct {
	docType domain.DocumentType
	tag     string
	prefix  string
}{
	{domain.DocSummary, "summary", "Summary:"},
	{domain.DocQASet, "qa_set", "Q&A:"},
	{domain.DocRAGResponse, "rag_response", "Ask:"},
}

// DocumentType infers the canonical type of a wire note. The type is
// never transmitted; this is a total function over tags and title.
func DocumentType(n wire.Note) domain.DocumentType {
	for _, rule := range typeRules {
		if hasTag(n.Tags, rule.tag) || strings.HasPrefix(n.Title, rule.prefix) {
			return rule.docType
		}
	}
	return domain.DocManual
}

// Document maps a wire note to its canonical projection.
func Document(n wire.Note) domain.Document {
	return domain.Document{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      n.Tags,
		Type:      DocumentType(n),
		CreatedAt: parseTime(n.CreatedAt),
		UpdatedAt: parseTime(n.UpdatedAt),
	}
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(strings.TrimSpace(t), want) {
			return true
		}
	}
	return false
}

// parseTime decodes a wire timestamp. Absent or unparsable values
// default to now at mapping time; the canonical model never carries a
// missing timestamp.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Now()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Now()
}
