package domain

import "time"

// Scope selects which papers a retrieval query targets.
type Scope string

const (
	ScopeSelected Scope = "selected"
	ScopeAll      Scope = "all"
)

// Source is one citation attached to an answer, in ranking order.
type Source struct {
	Title string
	URL   string
}

// AskEntry is one Q&A history row. LocalID is the stable client handle
// assigned at creation; ServerID is zero until the entry is persisted.
// An entry whose persistence failed keeps ServerID zero permanently and
// is never retried.
type AskEntry struct {
	LocalID   string
	ServerID  int64
	Question  string
	Answer    string
	Sources   []Source
	Scope     Scope
	Provider  string
	CreatedAt time.Time
}

// Persisted reports whether the server has confirmed this entry.
func (e AskEntry) Persisted() bool {
	return e.ServerID != 0
}
