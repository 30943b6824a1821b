package sampleseason

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/okian/wrapped/internal/adapters/ingest"
	"github.com/okian/wrapped/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Write stores the season as an export directory readable by ingest.
func Write(ctx context.Context, dir string, s *Season) error {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	files := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{ingest.CompetitorsFile, []string{ingest.ColID, ingest.ColName}, competitorRows(s)},
		{ingest.RoundsFile, []string{ingest.ColID, ingest.ColCreated, ingest.ColName, ingest.ColDescription}, roundRows(s)},
		{ingest.SubmissionsFile, []string{
			ingest.ColSpotifyURI, ingest.ColTitle, ingest.ColArtists, ingest.ColSubmitterID,
			ingest.ColCreated, ingest.ColComment, ingest.ColRoundID,
		}, submissionRows(s)},
		{ingest.VotesFile, []string{
			ingest.ColSpotifyURI, ingest.ColVoterID, ingest.ColCreated,
			ingest.ColPoints, ingest.ColComment, ingest.ColRoundID,
		}, voteRows(s)},
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeCSV(filepath.Join(dir, f.name), f.header, f.rows); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		logger.Get().Debug(ctx, "export file written",
			logger.String("file", f.name),
			logger.Int("rows", len(f.rows)))
	}
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return err
	}
	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		_ = file.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func competitorRows(s *Season) [][]string {
	out := make([][]string, 0, len(s.Competitors))
	for _, c := range s.Competitors {
		out = append(out, []string{c.ID, c.Name})
	}
	return out
}

func roundRows(s *Season) [][]string {
	out := make([][]string, 0, len(s.Rounds))
	for _, r := range s.Rounds {
		out = append(out, []string{r.Row.ID, stamp(r.Created), r.Row.Name, r.Row.Description})
	}
	return out
}

func submissionRows(s *Season) [][]string {
	out := make([][]string, 0, len(s.Submissions))
	for _, sub := range s.Submissions {
		r := sub.Row
		out = append(out, []string{r.TrackID, r.Title, r.Artist, r.SubmitterID, stamp(sub.Created), r.Comment, r.RoundID})
	}
	return out
}

func voteRows(s *Season) [][]string {
	out := make([][]string, 0, len(s.Votes))
	for _, v := range s.Votes {
		r := v.Row
		out = append(out, []string{r.TrackID, r.VoterID, stamp(v.Created), strconv.Itoa(r.Points), r.Comment, r.RoundID})
	}
	return out
}
