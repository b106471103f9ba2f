// Package scheduler reloads the fixture on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/datakamer/datakamer-backend/internal/loader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

type Reloader interface {
	LoadFile(ctx context.Context, path string) (loader.Summary, error)
}

// Scheduler runs one reload job. Overlapping runs are skipped rather than
// queued, since two loads would race on the wipe.
type Scheduler struct {
	cron     *cron.Cron
	reloader Reloader
	path     string
	timeout  time.Duration
	reloads  *prometheus.CounterVec
}

// New validates spec (six fields, seconds first) and registers the reload
// counter on reg.
func New(spec, path string, r Reloader, reg prometheus.Registerer) (*Scheduler, error) {
	logger := cron.PrintfLogger(log.Default())
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		reloader: r,
		path:     path,
		timeout:  5 * time.Minute,
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datakamer_fixture_reloads_total",
			Help: "Scheduled fixture reloads by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		if err := reg.Register(s.reloads); err != nil {
			return nil, fmt.Errorf("register reload counter: %w", err)
		}
	}
	if _, err := s.cron.AddFunc(spec, func() { s.Run(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	log.Printf("[info] fixture reload scheduled path=%s", s.path)
	s.cron.Start()
}

// Stop prevents new runs and waits for a running one to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Run performs a single reload. A failed load leaves the catalog untouched.
func (s *Scheduler) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	sum, err := s.reloader.LoadFile(ctx, s.path)
	if err != nil {
		s.reloads.WithLabelValues("failure").Inc()
		log.Printf("[error] fixture reload failed path=%s err=%v", s.path, err)
		return
	}
	s.reloads.WithLabelValues("success").Inc()
	log.Printf("[info] fixture reloaded path=%s regions=%d universities=%d skipped=%d took=%s",
		s.path, sum.Regions, sum.Universities, sum.SkippedUniversities, time.Since(start))
}
