// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// AwardsDependencies defines the interface for award reads.
type AwardsDependencies interface {
	Awards(ctx context.Context) ([]Award, error)
}

// AwardsHandler handles award requests.
type AwardsHandler struct {
	deps AwardsDependencies
}

// NewAwardsHandler creates a new awards handler.
func NewAwardsHandler(deps AwardsDependencies) *AwardsHandler {
	return &AwardsHandler{deps: deps}
}

// HandleGetAwards handles GET /awards requests. ?applicable=true drops
// categories nobody qualified for.
func (h *AwardsHandler) HandleGetAwards(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_awards"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	onlyApplicable, err := boolQuery(r, "applicable")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	awards, err := h.deps.Awards(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if onlyApplicable {
		kept := awards[:0:0]
		for _, a := range awards {
			if a.Applicable {
				kept = append(kept, a)
			}
		}
		awards = kept
	}
	writeJSON(w, http.StatusOK, newList(awards))
}
