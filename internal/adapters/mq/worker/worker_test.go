package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/okian/wrapped/internal/adapters/mq/worker"
	"github.com/okian/wrapped/internal/domain/model"
	"github.com/okian/wrapped/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		ctx := context.Background()
		pool := worker.NewPool(4, worker.WithQueueSize(2), worker.WithPoolLogger(logger.Nop()))

		convey.Convey("When running more jobs than the queue holds", func() {
			out := make([]int, 100)
			jobs := make([]model.Job, len(out))
			for i := range jobs {
				jobs[i] = model.Job{ID: fmt.Sprintf("square-%d", i), Run: func(context.Context) error {
					out[i] = i * i
					return nil
				}}
			}

			err := pool.Run(ctx, jobs)

			convey.Convey("Then every job writes its own slot", func() {
				convey.So(err, convey.ShouldBeNil)
				for i, v := range out {
					convey.So(v, convey.ShouldEqual, i*i)
				}
			})
		})

		convey.Convey("When a job fails", func() {
			boom := errors.New("boom")
			var ran atomic.Int64
			jobs := make([]model.Job, 50)
			for i := range jobs {
				jobs[i] = model.Job{ID: fmt.Sprintf("job-%d", i), Run: func(context.Context) error {
					ran.Add(1)
					if i == 3 {
						return boom
					}
					return nil
				}}
			}

			err := pool.Run(ctx, jobs)

			convey.Convey("Then the batch fails with that error", func() {
				convey.So(errors.Is(err, boom), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "job-3")
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			var ran atomic.Int64
			jobs := []model.Job{{ID: "a", Run: func(context.Context) error { ran.Add(1); return nil }}}

			err := pool.Run(cctx, jobs)

			convey.Convey("Then it reports cancellation", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the batch is empty", func() {
			convey.So(pool.Run(ctx, nil), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a pool built with a non-positive worker count", t, func() {
		pool := worker.NewPool(0)

		convey.Convey("Then it falls back to at least one worker", func() {
			convey.So(pool.Workers(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
