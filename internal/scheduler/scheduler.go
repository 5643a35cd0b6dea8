// Package scheduler implements the host scheduler (spec.md §4.8, C8):
// groups targets by normalized host, runs a worker pool of configurable
// width, and reuses one browser session sequentially across every
// target in a host group, recreating it only on failure.
//
// Grounded on the teacher's local_pipeline.go worker-pool pattern
// (parseFilesParallel): a fixed-size pool of goroutines pulling work
// items off a channel, synchronized with sync.WaitGroup, with progress
// counted via sync/atomic rather than a mutex-guarded counter.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/kraklabs/depconfuse/internal/capture"
	"github.com/kraklabs/depconfuse/internal/orchestrator"
	"github.com/kraklabs/depconfuse/internal/scan"
)

// ProgressFunc is invoked once per completed target, in the order
// completions occur (not necessarily target-list order).
type ProgressFunc func(scan.TargetReport)

// Scheduler runs a worker pool over host groups, one reused browser
// session per group.
type Scheduler struct {
	orch     *orchestrator.Orchestrator
	cfg      scan.Config
	log      *slog.Logger
	progress ProgressFunc
}

// New builds a Scheduler. progress may be nil.
func New(orch *orchestrator.Orchestrator, cfg scan.Config, log *slog.Logger, progress ProgressFunc) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	if progress == nil {
		progress = func(scan.TargetReport) {}
	}
	return &Scheduler{orch: orch, cfg: cfg, log: log, progress: progress}
}

// Run groups targets by host and scans every group, bounded to cfg.Parallel
// concurrent workers. Results are returned in first-seen target order
// (stable regardless of completion order), per §5 "Ordering guarantees".
func (s *Scheduler) Run(ctx context.Context, targets []scan.Target) []scan.TargetReport {
	groups := scan.GroupByHost(targets)

	reports := make([]scan.TargetReport, len(targets))
	// positions[host][j] is the input index of that group's j-th target, so
	// a URL listed twice keeps both of its slots.
	positions := make(map[string][]int, len(groups))
	for i, t := range targets {
		positions[t.Host] = append(positions[t.Host], i)
	}

	work := make(chan scan.HostGroup)
	var wg sync.WaitGroup
	var completed int64

	parallel := s.cfg.Parallel
	if parallel < 1 {
		parallel = 1
	}
	if parallel > len(groups) && len(groups) > 0 {
		parallel = len(groups)
	}

	for w := 0; w < parallel; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range work {
				for j, report := range s.runGroup(ctx, group) {
					reports[positions[group.Host][j]] = report
					atomic.AddInt64(&completed, 1)
					s.progress(report)
				}
			}
		}()
	}

	for _, g := range groups {
		select {
		case work <- g:
		case <-ctx.Done():
		}
	}
	close(work)
	wg.Wait()

	s.log.Info("scan.scheduler.done", "targets", len(targets), "completed", atomic.LoadInt64(&completed))
	return reports
}

// runGroup scans every target in a host group sequentially, reusing one
// browser session and recreating it only after a session failure
// (spec.md §4.8).
func (s *Scheduler) runGroup(ctx context.Context, group scan.HostGroup) []scan.TargetReport {
	reports := make([]scan.TargetReport, 0, len(group.Targets))

	var session *capture.Session
	defer func() {
		if session != nil {
			session.Close()
		}
	}()

	for _, target := range group.Targets {
		if ctx.Err() != nil {
			reports = append(reports, scan.TargetReport{URL: target.URL, Status: scan.StatusTimedOut})
			continue
		}

		if session == nil || !session.Healthy() {
			if session != nil {
				session.Close()
			}
			newSession, err := capture.NewSession(s.cfg.ChromePath)
			if err != nil {
				reports = append(reports, scan.TargetReport{
					URL:    target.URL,
					Status: scan.StatusError,
					Errors: []string{"browser session: " + err.Error()},
				})
				session = nil
				continue
			}
			session = newSession
		}

		targetCtx, cancel := context.WithTimeout(ctx, target.Timeout)
		report := s.orch.Run(targetCtx, target, session)
		cancel()

		if !session.Healthy() {
			session.Close()
			session = nil
		}

		reports = append(reports, report)
	}

	return reports
}
