package httptransport

import (
	"context"
	"net/http"

	"poker-pool/internal/store"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type AdminHandlers struct {
	store store.PersistenceClient
}

func NewAdminHandlers(st store.PersistenceClient) *AdminHandlers {
	return &AdminHandlers{store: st}
}

// Health stays 200 while the database is down; the node keeps playing without it.
func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		db := "offline"
		if p, ok := h.store.(pinger); ok {
			db = "up"
			if err := p.Ping(r.Context()); err != nil {
				db = "down"
			}
		}
		writeJSON(w, map[string]any{"ok": true, "db": db})
	}
}

func (h *AdminHandlers) Sessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricSessionsQueryTotal.Add(1)
		limit := ParseLimit(r)
		items := h.store.ListActiveSessions(r.Context(), limit)
		writeJSON(w, map[string]any{"items": items, "limit": limit})
	}
}
