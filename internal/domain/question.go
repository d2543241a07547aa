// Package domain holds the canonical in-memory model. Unlike the wire
// shapes, vocabularies here are closed: unknown wire values are resolved
// by the mapper package with explicit defaults instead of leaking open
// strings through comparisons.
package domain

import "time"

// QuestionType is the closed set of question kinds the client renders.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	ShortAnswer    QuestionType = "short-answer"
	Essay          QuestionType = "essay"
)

// Question is a canonical question. For multiple-choice, CorrectIndex
// is always a valid index into Options (construction clamps
// unresolvable wire answers to 0); for every other type the answer is
// the free text in CorrectText.
type Question struct {
	ID           int64
	SetID        int64
	Type         QuestionType
	Text         string
	Options      []string
	CorrectIndex int
	CorrectText  string
	Explanation  string
	Reference    string
}

// QuestionSet groups canonical questions saved under one title. Sets
// keep their server identity; titles are not unique across sets.
type QuestionSet struct {
	ID        int64
	PaperID   int64
	Title     string
	Questions []Question
	CreatedAt time.Time
}
