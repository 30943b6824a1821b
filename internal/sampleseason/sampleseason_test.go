package sampleseason_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/wrapped/internal/adapters/ingest"
	"github.com/okian/wrapped/internal/adapters/repository"
	"github.com/okian/wrapped/internal/sampleseason"
	"github.com/okian/wrapped/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testConfig(dir string) *sampleseason.Config {
	cfg := sampleseason.DefaultConfig()
	cfg.OutputDir = dir
	cfg.Competitors = 6
	cfg.Rounds = 4
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	Convey("Given the default config", t, func() {
		So(sampleseason.DefaultConfig().Validate(), ShouldBeNil)
	})

	Convey("Given out of range settings", t, func() {
		cases := []struct {
			name   string
			mutate func(*sampleseason.Config)
		}{
			{"one competitor", func(c *sampleseason.Config) { c.Competitors = 1 }},
			{"no rounds", func(c *sampleseason.Config) { c.Rounds = 0 }},
			{"no points", func(c *sampleseason.Config) { c.PointsPerVoter = 0 }},
			{"zero participation", func(c *sampleseason.Config) { c.Participation = 0 }},
			{"comment rate above one", func(c *sampleseason.Config) { c.CommentRate = 1.5 }},
			{"no output dir", func(c *sampleseason.Config) { c.OutputDir = "" }},
			{"bad verify url", func(c *sampleseason.Config) { c.VerifyURL = "not a url" }},
			{"verify without timeout", func(c *sampleseason.Config) {
				c.VerifyURL = "http://localhost:9080"
				c.Timeout = 0
			}},
		}
		for _, tc := range cases {
			cfg := sampleseason.DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			So(errors.Is(err, sampleseason.ErrInvalidConfig), ShouldBeTrue)
		}
	})
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	Convey("Given a seeded config", t, func() {
		cfg := testConfig(t.TempDir())

		Convey("When generating twice", func() {
			a, err := sampleseason.Generate(ctx, cfg)
			So(err, ShouldBeNil)
			b, err := sampleseason.Generate(ctx, cfg)
			So(err, ShouldBeNil)

			Convey("Then the seasons are identical", func() {
				So(a, ShouldResemble, b)
				So(len(a.Competitors), ShouldEqual, 6)
				So(len(a.Rounds), ShouldEqual, 4)
			})
		})

		Convey("When the seed changes", func() {
			a, _ := sampleseason.Generate(ctx, cfg)
			cfg.Seed = 2
			b, _ := sampleseason.Generate(ctx, cfg)
			So(a.Competitors[0].ID, ShouldNotEqual, b.Competitors[0].ID)
		})

		Convey("When every competitor always enters", func() {
			cfg.Participation = 1
			s, err := sampleseason.Generate(ctx, cfg)
			So(err, ShouldBeNil)

			Convey("Then each voter spends the full budget on others", func() {
				So(len(s.Submissions), ShouldEqual, 6*4)
				owner := map[string]string{}
				for _, sub := range s.Submissions {
					owner[sub.Row.RoundID+"|"+sub.Row.TrackID] = sub.Row.SubmitterID
					So(sub.Row.TrackID, ShouldStartWith, "spotify:track:")
					So(len(strings.TrimPrefix(sub.Row.TrackID, "spotify:track:")), ShouldEqual, 22)
				}
				spent := map[string]int{}
				for _, v := range s.Votes {
					So(owner[v.Row.RoundID+"|"+v.Row.TrackID], ShouldNotEqual, v.Row.VoterID)
					So(v.Row.Points, ShouldBeGreaterThan, 0)
					spent[v.Row.RoundID+"|"+v.Row.VoterID] += v.Row.Points
				}
				So(len(spent), ShouldEqual, 6*4)
				for _, total := range spent {
					So(total, ShouldEqual, cfg.PointsPerVoter)
				}
			})
		})

		Convey("When the config is invalid", func() {
			cfg.Rounds = 0
			_, err := sampleseason.Generate(ctx, cfg)
			So(errors.Is(err, sampleseason.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := sampleseason.Generate(cctx, cfg)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestWrite(t *testing.T) {
	ctx := context.Background()

	Convey("Given a generated season written to disk", t, func() {
		dir := filepath.Join(t.TempDir(), "export")
		cfg := testConfig(dir)
		s, err := sampleseason.Generate(ctx, cfg)
		So(err, ShouldBeNil)
		So(sampleseason.Write(ctx, dir, s), ShouldBeNil)

		Convey("Then all four export files exist", func() {
			for _, name := range []string{ingest.CompetitorsFile, ingest.RoundsFile, ingest.SubmissionsFile, ingest.VotesFile} {
				_, err := os.Stat(filepath.Join(dir, name))
				So(err, ShouldBeNil)
			}
		})

		Convey("Then the ingest loader reads the same season back", func() {
			rows, err := ingest.NewCSVLoader(dir).Load(ctx)
			So(err, ShouldBeNil)
			So(len(rows.Competitors), ShouldEqual, len(s.Competitors))
			So(len(rows.Submissions), ShouldEqual, len(s.Submissions))
			So(len(rows.Votes), ShouldEqual, len(s.Votes))
			for i, r := range rows.Rounds {
				So(r.ID, ShouldEqual, s.Rounds[i].Row.ID)
				So(r.Position, ShouldEqual, i+1)
			}

			_, err = repository.NewMemoryStore(ctx, rows)
			So(err, ShouldBeNil)
		})
	})
}

func statsServer(body string, status int) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	})
	return httptest.NewServer(mux)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	counts := repository.Counts{Competitors: 3, Rounds: 2, Submissions: 4, Votes: 5}

	Convey("Given a service reporting matching counts", t, func() {
		srv := statsServer(`{"run_id":"r","competitors":3,"rounds":2,"submissions":4,"votes":5}`, http.StatusOK)
		defer srv.Close()
		So(sampleseason.Verify(ctx, srv.Client(), srv.URL+"/", counts), ShouldBeNil)
	})

	Convey("Given a service reporting different counts", t, func() {
		srv := statsServer(`{"competitors":3,"rounds":2,"submissions":4,"votes":9}`, http.StatusOK)
		defer srv.Close()
		err := sampleseason.Verify(ctx, srv.Client(), srv.URL, counts)
		So(errors.Is(err, sampleseason.ErrVerification), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "votes: want 5, got 9")
	})

	Convey("Given a service that is not ready", t, func() {
		srv := statsServer(`{"code":"not_ready"}`, http.StatusServiceUnavailable)
		defer srv.Close()
		err := sampleseason.Verify(ctx, srv.Client(), srv.URL, counts)
		So(errors.Is(err, sampleseason.ErrVerification), ShouldBeTrue)
	})

	Convey("Given a service returning garbage", t, func() {
		srv := statsServer(`<html>`, http.StatusOK)
		defer srv.Close()
		err := sampleseason.Verify(ctx, srv.Client(), srv.URL, counts)
		So(errors.Is(err, sampleseason.ErrVerification), ShouldBeTrue)
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given a config without verification", t, func() {
		cfg := testConfig(t.TempDir())

		Convey("Then the export is written and counted", func() {
			counts, err := sampleseason.Run(ctx, cfg)
			So(err, ShouldBeNil)
			So(counts.Competitors, ShouldEqual, 6)
			So(counts.Rounds, ShouldEqual, 4)
		})
	})

	Convey("Given a config verified against a disagreeing service", t, func() {
		srv := statsServer(`{"competitors":0,"rounds":0,"submissions":0,"votes":0}`, http.StatusOK)
		defer srv.Close()
		cfg := testConfig(t.TempDir())
		cfg.VerifyURL = srv.URL

		Convey("Then Run reports the mismatch", func() {
			_, err := sampleseason.Run(ctx, cfg)
			So(errors.Is(err, sampleseason.ErrVerification), ShouldBeTrue)
		})
	})
}

func TestShowHelp(t *testing.T) {
	Convey("Given the help text", t, func() {
		var buf bytes.Buffer
		sampleseason.ShowHelp(&buf)
		So(buf.String(), ShouldContainSubstring, "-verify")
	})
}
