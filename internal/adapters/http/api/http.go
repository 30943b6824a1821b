// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/wrapped/internal/app"
	"github.com/okian/wrapped/internal/domain/report"
	"github.com/okian/wrapped/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider
	AwardsDependencies
	CompetitorDependencies
	SeasonDependencies
}

// Server wires HTTP routes for the report API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	awardsHandler      *AwardsHandler
	competitorsHandler *CompetitorsHandler
	seasonHandler      *SeasonHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		awardsHandler:      NewAwardsHandler(deps),
		competitorsHandler: NewCompetitorsHandler(deps),
		seasonHandler:      NewSeasonHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/awards", MetricsMiddleware(s.awardsHandler.HandleGetAwards, "awards"))
	mux.HandleFunc("/competitors", MetricsMiddleware(s.competitorsHandler.HandleListCompetitors, "competitors"))
	mux.HandleFunc("/competitors/", MetricsMiddleware(s.competitorsHandler.HandleGetCompetitor, "competitor"))
	mux.HandleFunc("/pairs", MetricsMiddleware(s.seasonHandler.HandleGetPairs, "pairs"))
	mux.HandleFunc("/rounds", MetricsMiddleware(s.seasonHandler.HandleGetRounds, "rounds"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// listResponse wraps collections so the top-level JSON value is an object.
type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Count: len(items)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	err = fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, service.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	case errors.Is(err, report.ErrUnknownCompetitor):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// Aliases for the response shapes.
type (
	Award      = types.Award
	Competitor = types.Competitor
	Wrapped    = types.Wrapped
	Pair       = types.Pair
	Round      = types.Round
	Summary    = types.Summary
)
