// Package repository holds the normalized, validated season tables.
package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/okian/wrapped/internal/domain/dedupe"
	"github.com/okian/wrapped/internal/domain/model"
	"github.com/okian/wrapped/pkg/logger"
	"github.com/okian/wrapped/pkg/metrics"
)

// Rows is the raw input contract: the four season tables.
type Rows struct {
	Competitors []model.Competitor
	Rounds      []model.Round
	Submissions []model.Submission
	Votes       []model.Vote
}

// Counts reports table sizes.
type Counts struct {
	Competitors int `json:"competitors"`
	Rounds      int `json:"rounds"`
	Submissions int `json:"submissions"`
	Votes       int `json:"votes"`
}

// Store provides read access to a validated season.
type Store interface {
	Competitors(ctx context.Context) []model.Competitor
	Competitor(ctx context.Context, id string) (model.Competitor, error)
	// Rounds returns rounds ordered by Position, then ID.
	Rounds(ctx context.Context) []model.Round
	// Submissions returns a round's submissions ordered by submitter, then track.
	Submissions(ctx context.Context, roundID string) []model.Submission
	// Votes returns a round's votes ordered by Sequence, voter, then track.
	Votes(ctx context.Context, roundID string) []model.Vote
	Submission(ctx context.Context, key model.SubmissionKey) (model.Submission, error)
	Counts(ctx context.Context) Counts
}

// MemoryStore is an immutable in-memory Store. It is safe for concurrent
// reads once NewMemoryStore returns.
type MemoryStore struct {
	validate *validator.Validate
	log      logger.Logger

	competitors   []model.Competitor
	competitorIdx map[string]int
	rounds        []model.Round
	roundIdx      map[string]int
	submissions   map[string][]model.Submission
	submissionIdx map[model.SubmissionKey]model.Submission
	votes         map[string][]model.Vote
	counts        Counts
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore validates rows and builds the store. Any invalid row fails
// the whole load with a *RecordError wrapping ErrMalformedReference or
// ErrInvalidRecord.
func NewMemoryStore(ctx context.Context, rows Rows, opts ...Option) (*MemoryStore, error) {
	s := &MemoryStore{
		validate:      validator.New(),
		log:           logger.Nop(),
		competitorIdx: make(map[string]int, len(rows.Competitors)),
		roundIdx:      make(map[string]int, len(rows.Rounds)),
		submissions:   make(map[string][]model.Submission, len(rows.Rounds)),
		submissionIdx: make(map[model.SubmissionKey]model.Submission, len(rows.Submissions)),
		votes:         make(map[string][]model.Vote, len(rows.Rounds)),
	}
	for _, opt := range opts {
		opt(s)
	}

	seen := dedupe.NewInMemoryDeduper(dedupe.WithCapacity(len(rows.Submissions) + len(rows.Votes)))
	steps := []func(context.Context, Rows, dedupe.Deduper) error{
		s.loadCompetitors,
		s.loadRounds,
		s.loadSubmissions,
		s.loadVotes,
	}
	for _, step := range steps {
		if err := step(ctx, rows, seen); err != nil {
			s.log.Error(ctx, "season rejected", logger.Error(err))
			return nil, err
		}
	}

	s.counts = Counts{
		Competitors: len(s.competitors),
		Rounds:      len(s.rounds),
		Submissions: len(rows.Submissions),
		Votes:       len(rows.Votes),
	}
	metrics.UpdateSeasonRecords(TableCompetitors, s.counts.Competitors)
	metrics.UpdateSeasonRecords(TableRounds, s.counts.Rounds)
	metrics.UpdateSeasonRecords(TableSubmissions, s.counts.Submissions)
	metrics.UpdateSeasonRecords(TableVotes, s.counts.Votes)

	s.log.Info(ctx, "season loaded",
		logger.Int("competitors", s.counts.Competitors),
		logger.Int("rounds", s.counts.Rounds),
		logger.Int("submissions", s.counts.Submissions),
		logger.Int("votes", s.counts.Votes))
	return s, nil
}

func (s *MemoryStore) checkStruct(table, key string, row any) error {
	if err := s.validate.Struct(row); err != nil {
		return recordErr(table, key, ErrInvalidRecord, "%v", err)
	}
	return nil
}

func (s *MemoryStore) loadCompetitors(ctx context.Context, rows Rows, seen dedupe.Deduper) error {
	for i, c := range rows.Competitors {
		if err := s.checkStruct(TableCompetitors, strconv.Itoa(i), c); err != nil {
			return err
		}
		if seen.SeenAndRecord(ctx, dedupe.Key(TableCompetitors, c.ID)) {
			return recordErr(TableCompetitors, c.ID, ErrInvalidRecord, "duplicate competitor id")
		}
		s.competitors = append(s.competitors, c)
	}
	slices.SortFunc(s.competitors, func(a, b model.Competitor) int { return cmp.Compare(a.ID, b.ID) })
	for i, c := range s.competitors {
		s.competitorIdx[c.ID] = i
	}
	return nil
}

func (s *MemoryStore) loadRounds(ctx context.Context, rows Rows, seen dedupe.Deduper) error {
	for i, r := range rows.Rounds {
		if err := s.checkStruct(TableRounds, strconv.Itoa(i), r); err != nil {
			return err
		}
		if seen.SeenAndRecord(ctx, dedupe.Key(TableRounds, r.ID)) {
			return recordErr(TableRounds, r.ID, ErrInvalidRecord, "duplicate round id")
		}
		s.rounds = append(s.rounds, r)
	}
	slices.SortFunc(s.rounds, func(a, b model.Round) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	for i, r := range s.rounds {
		s.roundIdx[r.ID] = i
	}
	return nil
}

func (s *MemoryStore) loadSubmissions(ctx context.Context, rows Rows, seen dedupe.Deduper) error {
	for i, sub := range rows.Submissions {
		key := fmt.Sprintf("%s/%s", sub.RoundID, sub.TrackID)
		if err := s.checkStruct(TableSubmissions, strconv.Itoa(i), sub); err != nil {
			return err
		}
		if _, ok := s.roundIdx[sub.RoundID]; !ok {
			return recordErr(TableSubmissions, key, ErrMalformedReference, "unknown round %q", sub.RoundID)
		}
		if _, ok := s.competitorIdx[sub.SubmitterID]; !ok {
			return recordErr(TableSubmissions, key, ErrMalformedReference, "unknown submitter %q", sub.SubmitterID)
		}
		if seen.SeenAndRecord(ctx, dedupe.Key(TableSubmissions, sub.RoundID, "track", sub.TrackID)) {
			return recordErr(TableSubmissions, key, ErrInvalidRecord, "track submitted twice in round")
		}
		if seen.SeenAndRecord(ctx, dedupe.Key(TableSubmissions, sub.RoundID, "submitter", sub.SubmitterID)) {
			return recordErr(TableSubmissions, key, ErrInvalidRecord, "competitor %q submitted twice in round", sub.SubmitterID)
		}
		s.submissions[sub.RoundID] = append(s.submissions[sub.RoundID], sub)
		s.submissionIdx[sub.Key()] = sub
	}
	for _, subs := range s.submissions {
		slices.SortFunc(subs, func(a, b model.Submission) int {
			if c := cmp.Compare(a.SubmitterID, b.SubmitterID); c != 0 {
				return c
			}
			return cmp.Compare(a.TrackID, b.TrackID)
		})
	}
	return nil
}

func (s *MemoryStore) loadVotes(ctx context.Context, rows Rows, seen dedupe.Deduper) error {
	// round -> sequence -> voter holding it
	sequenceOwner := make(map[string]map[int]string, len(s.rounds))

	for i, v := range rows.Votes {
		key := fmt.Sprintf("%s/%s/%s", v.RoundID, v.VoterID, v.TrackID)
		if v.Points < 0 {
			return recordErr(TableVotes, key, ErrInvalidRecord, "negative points %d", v.Points)
		}
		if err := s.checkStruct(TableVotes, strconv.Itoa(i), v); err != nil {
			return err
		}
		ri, ok := s.roundIdx[v.RoundID]
		if !ok {
			return recordErr(TableVotes, key, ErrMalformedReference, "unknown round %q", v.RoundID)
		}
		if _, ok := s.competitorIdx[v.VoterID]; !ok {
			return recordErr(TableVotes, key, ErrMalformedReference, "unknown voter %q", v.VoterID)
		}
		if _, ok := s.submissionIdx[v.Key()]; !ok {
			return recordErr(TableVotes, key, ErrMalformedReference, "no submission for track %q in round", v.TrackID)
		}
		if budget := s.rounds[ri].PointBudget; budget > 0 && v.Points > budget {
			return recordErr(TableVotes, key, ErrInvalidRecord, "points %d exceed round budget %d", v.Points, budget)
		}
		if seen.SeenAndRecord(ctx, dedupe.Key(TableVotes, v.RoundID, v.VoterID, v.TrackID)) {
			return recordErr(TableVotes, key, ErrInvalidRecord, "duplicate vote")
		}
		owners := sequenceOwner[v.RoundID]
		if owners == nil {
			owners = make(map[int]string)
			sequenceOwner[v.RoundID] = owners
		}
		if owner, taken := owners[v.Sequence]; taken && owner != v.VoterID {
			return recordErr(TableVotes, key, ErrInvalidRecord, "sequence %d already used by voter %q", v.Sequence, owner)
		}
		owners[v.Sequence] = v.VoterID
		s.votes[v.RoundID] = append(s.votes[v.RoundID], v)
	}
	for _, votes := range s.votes {
		slices.SortFunc(votes, compareVotes)
	}
	return nil
}

func compareVotes(a, b model.Vote) int {
	if c := cmp.Compare(a.Sequence, b.Sequence); c != 0 {
		return c
	}
	if c := cmp.Compare(a.VoterID, b.VoterID); c != 0 {
		return c
	}
	return cmp.Compare(a.TrackID, b.TrackID)
}

// Competitors returns all competitors ordered by ID.
func (s *MemoryStore) Competitors(_ context.Context) []model.Competitor {
	return slices.Clone(s.competitors)
}

// Competitor looks up a competitor by ID.
func (s *MemoryStore) Competitor(_ context.Context, id string) (model.Competitor, error) {
	i, ok := s.competitorIdx[id]
	if !ok {
		return model.Competitor{}, fmt.Errorf("competitor %q: %w", id, ErrNotFound)
	}
	return s.competitors[i], nil
}

func (s *MemoryStore) Rounds(_ context.Context) []model.Round {
	return slices.Clone(s.rounds)
}

func (s *MemoryStore) Submissions(_ context.Context, roundID string) []model.Submission {
	return slices.Clone(s.submissions[roundID])
}

func (s *MemoryStore) Votes(_ context.Context, roundID string) []model.Vote {
	return slices.Clone(s.votes[roundID])
}

// Submission looks up a submission by round and track.
func (s *MemoryStore) Submission(_ context.Context, key model.SubmissionKey) (model.Submission, error) {
	sub, ok := s.submissionIdx[key]
	if !ok {
		return model.Submission{}, fmt.Errorf("submission %s/%s: %w", key.RoundID, key.TrackID, ErrNotFound)
	}
	return sub, nil
}

func (s *MemoryStore) Counts(_ context.Context) Counts {
	return s.counts
}
