package mapper

import (
	"github.com/lectern/lectern/internal/domain"
	"github.com/lectern/lectern/internal/wire"
)

// Sources maps citation lists, preserving ranking order.
func Sources(ws []wire.Source) []domain.Source {
	if len(ws) == 0 {
		return nil
	}
	out := make([]domain.Source, len(ws))
	for i, w := range ws {
		out[i] = domain.Source{Title: w.Title, URL: w.URL}
	}
	return out
}

func sourcesToWire(ss []domain.Source) []wire.Source {
	if len(ss) == 0 {
		return nil
	}
	out := make([]wire.Source, len(ss))
	for i, s := range ss {
		out[i] = wire.Source{Title: s.Title, URL: s.URL}
	}
	return out
}

// AskEntry maps a persisted wire entry into the canonical form. The
// local handle is left empty; the caller owns handle assignment.
func AskEntry(w wire.AskEntry) domain.AskEntry {
	scope := domain.Scope(w.Scope)
	if scope != domain.ScopeSelected && scope != domain.ScopeAll {
		scope = domain.ScopeSelected
	}
	return domain.AskEntry{
		ServerID:  w.ID,
		Question:  w.Question,
		Answer:    w.Answer,
		Sources:   Sources(w.Sources),
		Scope:     scope,
		Provider:  w.Provider,
		CreatedAt: parseTime(w.CreatedAt),
	}
}

// AskEntryToWire shapes an entry for the persistence call. The local
// handle and server identity stay client-side; the server assigns its
// own id on create.
func AskEntryToWire(e domain.AskEntry) wire.AskEntry {
	return wire.AskEntry{
		Question: e.Question,
		Answer:   e.Answer,
		Sources:  sourcesToWire(e.Sources),
		Scope:    string(e.Scope),
		Provider: e.Provider,
	}
}
