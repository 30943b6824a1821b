// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// SeasonDependencies defines the interface for round and pair reads.
type SeasonDependencies interface {
	Pairs(ctx context.Context) ([]Pair, error)
	Rounds(ctx context.Context) ([]Round, error)
}

// SeasonHandler handles round and pair requests.
type SeasonHandler struct {
	deps SeasonDependencies
}

// NewSeasonHandler creates a new season handler.
func NewSeasonHandler(deps SeasonDependencies) *SeasonHandler {
	return &SeasonHandler{deps: deps}
}

// HandleGetPairs handles GET /pairs?competitor=ID requests. The optional
// competitor filter keeps pairs that include that competitor.
func (h *SeasonHandler) HandleGetPairs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	pairs, err := h.deps.Pairs(r.Context())
	if err != nil {
		writeServiceError(w, "api.get_pairs", err)
		return
	}
	if id := r.URL.Query().Get("competitor"); id != "" {
		kept := pairs[:0:0]
		for _, p := range pairs {
			if p.A == id || p.B == id {
				kept = append(kept, p)
			}
		}
		pairs = kept
	}
	writeJSON(w, http.StatusOK, newList(pairs))
}

// HandleGetRounds handles GET /rounds requests.
func (h *SeasonHandler) HandleGetRounds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rounds, err := h.deps.Rounds(r.Context())
	if err != nil {
		writeServiceError(w, "api.get_rounds", err)
		return
	}
	writeJSON(w, http.StatusOK, newList(rounds))
}

func boolQuery(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrBadRequest, key, err)
	}
	return v, nil
}
