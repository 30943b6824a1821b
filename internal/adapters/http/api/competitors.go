// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
)

// CompetitorDependencies defines the interface for competitor reads.
type CompetitorDependencies interface {
	Competitors(ctx context.Context) ([]Competitor, error)
	Competitor(ctx context.Context, id string) (Wrapped, error)
}

// CompetitorsHandler handles competitor requests.
type CompetitorsHandler struct {
	deps CompetitorDependencies
}

// NewCompetitorsHandler creates a new competitors handler.
func NewCompetitorsHandler(deps CompetitorDependencies) *CompetitorsHandler {
	return &CompetitorsHandler{deps: deps}
}

// HandleListCompetitors handles GET /competitors requests.
func (h *CompetitorsHandler) HandleListCompetitors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	comps, err := h.deps.Competitors(r.Context())
	if err != nil {
		writeServiceError(w, "api.list_competitors", err)
		return
	}
	writeJSON(w, http.StatusOK, newList(comps))
}

// HandleGetCompetitor handles GET /competitors/{id} requests.
func (h *CompetitorsHandler) HandleGetCompetitor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/competitors/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	wrapped, err := h.deps.Competitor(r.Context(), id)
	if err != nil {
		writeServiceError(w, "api.get_competitor", err)
		return
	}
	writeJSON(w, http.StatusOK, wrapped)
}
