// Package ingest reads a league export directory into repository rows.
package ingest

import (
	"cmp"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/okian/wrapped/internal/adapters/repository"
	"github.com/okian/wrapped/internal/domain/model"
	"github.com/okian/wrapped/pkg/logger"
)

// Export file names.
const (
	CompetitorsFile = "competitors.csv"
	RoundsFile      = "rounds.csv"
	SubmissionsFile = "submissions.csv"
	VotesFile       = "votes.csv"
)

// Export column headers.
const (
	ColID          = "ID"
	ColName        = "Name"
	ColCreated     = "Created"
	ColDescription = "Description"
	ColSpotifyURI  = "Spotify URI"
	ColTitle       = "Title"
	ColArtists     = "Artist(s)"
	ColSubmitterID = "Submitter ID"
	ColComment     = "Comment"
	ColRoundID     = "Round ID"
	ColVoterID     = "Voter ID"
	ColPoints      = "Points Assigned"
)

// Loader produces season rows.
type Loader interface {
	Load(ctx context.Context) (repository.Rows, error)
}

// CSVLoader reads the four export files from Dir.
type CSVLoader struct {
	dir string
	log logger.Logger
}

var _ Loader = (*CSVLoader)(nil)

// NewCSVLoader creates a loader for the export in dir.
func NewCSVLoader(dir string, opts ...Option) *CSVLoader {
	l := &CSVLoader{dir: dir, log: logger.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the export directory.
func (l *CSVLoader) Dir() string { return l.dir }

// Load reads every export file. Round positions follow round creation
// time and vote sequences follow each voter's first vote in the round.
func (l *CSVLoader) Load(ctx context.Context) (repository.Rows, error) {
	var rows repository.Rows
	if err := ctx.Err(); err != nil {
		return rows, err
	}

	comps, err := l.read(CompetitorsFile, []string{ColID, ColName}, func(r record) error {
		rows.Competitors = append(rows.Competitors, model.Competitor{ID: r.get(ColID), Name: r.get(ColName)})
		return nil
	})
	if err != nil {
		return rows, err
	}

	type createdRound struct {
		round   model.Round
		created time.Time
	}
	var rounds []createdRound
	nRounds, err := l.read(RoundsFile, []string{ColID, ColCreated, ColName}, func(r record) error {
		created, err := r.timeField(ColCreated)
		if err != nil {
			return err
		}
		rounds = append(rounds, createdRound{
			round:   model.Round{ID: r.get(ColID), Name: r.get(ColName), Description: r.get(ColDescription)},
			created: created,
		})
		return nil
	})
	if err != nil {
		return rows, err
	}
	slices.SortStableFunc(rounds, func(a, b createdRound) int {
		if c := a.created.Compare(b.created); c != 0 {
			return c
		}
		return cmp.Compare(a.round.ID, b.round.ID)
	})
	for i, r := range rounds {
		r.round.Position = i + 1
		rows.Rounds = append(rows.Rounds, r.round)
	}

	nSubs, err := l.read(SubmissionsFile, []string{ColSpotifyURI, ColSubmitterID, ColRoundID}, func(r record) error {
		rows.Submissions = append(rows.Submissions, model.Submission{
			RoundID:     r.get(ColRoundID),
			SubmitterID: r.get(ColSubmitterID),
			TrackID:     r.get(ColSpotifyURI),
			Title:       r.get(ColTitle),
			Artist:      r.get(ColArtists),
			Comment:     r.get(ColComment),
		})
		return nil
	})
	if err != nil {
		return rows, err
	}

	var stamps []time.Time
	nVotes, err := l.read(VotesFile, []string{ColSpotifyURI, ColVoterID, ColCreated, ColPoints, ColRoundID}, func(r record) error {
		created, err := r.timeField(ColCreated)
		if err != nil {
			return err
		}
		points, err := r.intField(ColPoints)
		if err != nil {
			return err
		}
		rows.Votes = append(rows.Votes, model.Vote{
			RoundID: r.get(ColRoundID),
			TrackID: r.get(ColSpotifyURI),
			VoterID: r.get(ColVoterID),
			Points:  points,
			Comment: r.get(ColComment),
		})
		stamps = append(stamps, created)
		return nil
	})
	if err != nil {
		return rows, err
	}
	assignSequences(rows.Votes, stamps)

	l.log.Info(ctx, "export loaded",
		logger.String("dir", l.dir),
		logger.Int("competitors", comps),
		logger.Int("rounds", nRounds),
		logger.Int("submissions", nSubs),
		logger.Int("votes", nVotes))
	return rows, nil
}

// assignSequences ranks each round's voters by their earliest vote, ties
// broken by voter ID, and stamps that rank on every vote they cast.
func assignSequences(votes []model.Vote, stamps []time.Time) {
	type voterKey struct{ round, voter string }
	first := map[voterKey]time.Time{}
	for i, v := range votes {
		k := voterKey{v.RoundID, v.VoterID}
		if t, ok := first[k]; !ok || stamps[i].Before(t) {
			first[k] = stamps[i]
		}
	}
	keys := make([]voterKey, 0, len(first))
	for k := range first {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b voterKey) int {
		if c := cmp.Compare(a.round, b.round); c != 0 {
			return c
		}
		if c := first[a].Compare(first[b]); c != 0 {
			return c
		}
		return cmp.Compare(a.voter, b.voter)
	})
	seq := make(map[voterKey]int, len(keys))
	n, round := 0, ""
	for _, k := range keys {
		if k.round != round {
			n, round = 0, k.round
		}
		n++
		seq[k] = n
	}
	for i := range votes {
		votes[i].Sequence = seq[voterKey{votes[i].RoundID, votes[i].VoterID}]
	}
}

// read opens name in the export directory, checks the required columns and
// calls fn for each data row. It returns the number of rows read.
func (l *CSVLoader) read(name string, required []string, fn func(record) error) (int, error) {
	path := filepath.Join(l.dir, name)
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			l.log.Warn(context.Background(), "close export file", logger.String("file", name), logger.Error(cerr))
		}
	}()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1
	header, err := rd.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%s: %w: empty file", name, ErrMissingColumn)
		}
		return 0, fmt.Errorf("read %s header: %w", name, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		cols[strings.TrimSpace(h)] = i
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return 0, fmt.Errorf("%s: %w: %q", name, ErrMissingColumn, c)
		}
	}

	n := 0
	for {
		fields, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("read %s: %w", name, err)
		}
		n++
		// Quoted fields may span lines, so ask the reader where the row began.
		line, _ := rd.FieldPos(0)
		if err := fn(record{file: name, line: line, cols: cols, fields: fields}); err != nil {
			return n, err
		}
	}
}

type record struct {
	file   string
	line   int
	cols   map[string]int
	fields []string
}

func (r record) get(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r record) invalid(col, value string, err error) error {
	return fmt.Errorf("%s line %d: %w: %s %q: %v", r.file, r.line, ErrInvalidRow, col, value, err)
}

func (r record) intField(col string) (int, error) {
	s := r.get(col)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, r.invalid(col, s, err)
	}
	return n, nil
}

// Layouts accepted for Created, tried in order.
var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

func (r record) timeField(col string) (time.Time, error) {
	s := r.get(col)
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, r.invalid(col, s, err)
}
