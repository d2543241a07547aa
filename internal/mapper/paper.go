package mapper

import (
	"github.com/lectern/lectern/internal/domain"
	"github.com/lectern/lectern/internal/wire"
)

// Paper maps a wire paper to its canonical projection.
func Paper(w wire.Paper) domain.Paper {
	return domain.Paper{
		ID:         w.ID,
		Filename:   w.Filename,
		Title:      w.Title,
		Status:     w.Status,
		UploadedAt: parseTime(w.UploadedAt),
	}
}

// Papers maps a wire paper list, preserving order.
func Papers(ws []wire.Paper) []domain.Paper {
	out := make([]domain.Paper, len(ws))
	for i, w := range ws {
		out[i] = Paper(w)
	}
	return out
}
