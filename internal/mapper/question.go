// Package mapper reconciles wire records into the canonical domain
// model and back. Every function is a pure, total transform: ambiguous
// or unrecognized wire data resolves to a documented default, never an
// error, so the client can render anything the service sends.
package mapper

import (
	"strings"

	"github.com/lectern/lectern/internal/domain"
	"github.com/lectern/lectern/internal/wire"
)

// kindToType is the fixed wire-kind table. The wire vocabulary is an
// open set; anything outside the table maps to short-answer.
var kindToType = map[string]domain.QuestionType{
	"multiple_choice": domain.MultipleChoice,
	"true_false":      domain.TrueFalse,
	"short_answer":    domain.ShortAnswer,
	"essay":           domain.Essay,
}

var typeToKind = map[domain.QuestionType]string{
	domain.MultipleChoice: "multiple_choice",
	domain.TrueFalse:      "true_false",
	domain.ShortAnswer:    "short_answer",
	domain.Essay:          "essay",
}

// Question maps a wire question to its canonical form.
func Question(w wire.Question) domain.Question {
	t, ok := kindToType[w.Kind]
	if !ok {
		t = domain.ShortAnswer
	}

	q := domain.Question{
		ID:          w.ID,
		SetID:       w.SetID,
		Type:        t,
		Text:        w.Text,
		Options:     w.Options,
		Explanation: w.Explanation,
		Reference:   w.Reference,
	}

	if t == domain.MultipleChoice {
		q.CorrectIndex = answerIndex(w.Answer, w.Options)
	} else {
		q.CorrectText = w.Answer
	}
	return q
}

// QuestionToWire is the inverse of Question. Multiple-choice indices
// are re-encoded as answer letters.
func QuestionToWire(q domain.Question) wire.Question {
	w := wire.Question{
		ID:          q.ID,
		SetID:       q.SetID,
		Kind:        typeToKind[q.Type],
		Text:        q.Text,
		Options:     q.Options,
		Explanation: q.Explanation,
		Reference:   q.Reference,
	}

	if q.Type == domain.MultipleChoice {
		w.Answer = indexToLetter(q.CorrectIndex)
	} else {
		w.Answer = q.CorrectText
	}
	return w
}

// answerIndex resolves a wire answer to a zero-based option index.
// Single-letter notation wins, case-insensitively, when the letter
// lands inside the options; otherwise the answer is matched against
// each option's text, trimmed and case-insensitive. Unresolvable
// answers default to 0, a documented lossy fallback rather than a
// failure.
func answerIndex(answer string, options []string) int {
	trimmed := strings.TrimSpace(answer)

	if len(trimmed) == 1 {
		c := trimmed[0]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c >= 'A' && c <= 'Z' {
			if idx := int(c - 'A'); idx < len(options) {
				return idx
			}
		}
	}

	for i, opt := range options {
		if strings.EqualFold(trimmed, strings.TrimSpace(opt)) {
			return i
		}
	}
	return 0
}

// QuestionSet maps a saved wire set, keeping its server identity.
func QuestionSet(w wire.QuestionSet) domain.QuestionSet {
	qs := make([]domain.Question, len(w.Questions))
	for i, q := range w.Questions {
		qs[i] = Question(q)
	}
	return domain.QuestionSet{
		ID:        w.ID,
		PaperID:   w.PaperID,
		Title:     w.Title,
		Questions: qs,
		CreatedAt: parseTime(w.CreatedAt),
	}
}

// QuestionSets maps a wire set list, preserving order.
func QuestionSets(ws []wire.QuestionSet) []domain.QuestionSet {
	out := make([]domain.QuestionSet, len(ws))
	for i, w := range ws {
		out[i] = QuestionSet(w)
	}
	return out
}

func indexToLetter(idx int) string {
	if idx < 0 || idx > 'Z'-'A' {
		return "A"
	}
	return string(rune('A' + idx))
}
