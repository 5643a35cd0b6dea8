package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/kraklabs/depconfuse/internal/alert"
	"github.com/kraklabs/depconfuse/internal/metrics"
	"github.com/kraklabs/depconfuse/internal/orchestrator"
	"github.com/kraklabs/depconfuse/internal/registry"
	"github.com/kraklabs/depconfuse/internal/report"
	"github.com/kraklabs/depconfuse/internal/scan"
	"github.com/kraklabs/depconfuse/internal/scheduler"
	"github.com/kraklabs/depconfuse/internal/ui"
)

// RunScan executes the scan subcommand end to end: load targets, build
// the shared registry client and per-target orchestrator, run the host
// scheduler, render and write the report, optionally forward High+
// findings to Telegram, and return the process exit code (spec.md §6
// "Exit codes").
func RunScan(ctx context.Context, f ScanFlags, nowRFC3339 string, log *slog.Logger) (int, error) {
	cfg, err := f.ToConfig()
	if err != nil {
		return 1, fmt.Errorf("config: %w", err)
	}

	runID := uuid.NewString()
	log = log.With("run_id", runID)

	targets, err := LoadTargets(f.Targets, f.File, cfg)
	if err != nil {
		return 1, err
	}

	out := os.Stdout
	if f.Output != "" {
		file, err := os.Create(f.Output)
		if err != nil {
			return 1, fmt.Errorf("config: open output %q: %w", f.Output, err)
		}
		defer file.Close()
		out = file
	}

	var m *metrics.Metrics
	if f.MetricsAddr != "" {
		m = metrics.New()
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := m.Serve(metricsCtx, f.MetricsAddr); err != nil {
				log.Error("scan.metrics.serve_failed", "err", err)
			}
		}()
	}

	httpClient := httpClientFromEnv()
	reg := registry.New(cfg.RateLimit, cfg.Timeout)
	orch := orchestrator.New(httpClient, reg, cfg, log, m)

	var bar *progressbar.ProgressBar
	if !cfg.Quiet && !f.Global.JSON {
		bar = progressbar.Default(int64(len(targets)), "scanning")
	}

	sched := scheduler.New(orch, cfg, log, func(tr scan.TargetReport) {
		if m != nil {
			m.TargetsScanned.WithLabelValues(string(tr.Status)).Inc()
			for _, finding := range tr.Findings {
				m.FindingsBySeverity.WithLabelValues(string(finding.Severity)).Inc()
			}
		}
		if bar != nil {
			bar.Add(1)
		}
	})

	results := sched.Run(ctx, targets)
	if bar != nil {
		bar.Finish()
	}

	if f.Telegram {
		forwardAlerts(ctx, results, log)
	}

	r := report.Build(results, nowRFC3339, runID)
	if err := writeReport(out, r, f, log); err != nil {
		return 1, err
	}

	return exitCode(results), nil
}

func writeReport(out io.Writer, r scan.Report, f ScanFlags, log *slog.Logger) error {
	if f.Global.JSON {
		return report.WriteJSON(out, r)
	}
	stdoutFile, ok := out.(*os.File)
	if !ok {
		stdoutFile = os.Stdout
	}
	u := ui.New(stdoutFile, f.Global.NoColor)
	report.WriteTerminal(u, r, f.Global.Quiet)
	log.Debug("scan.report.summary", "summary", report.Summary(r))
	return nil
}

func forwardAlerts(ctx context.Context, results []scan.TargetReport, log *slog.Logger) {
	forwarder, ok := alert.NewFromEnv(nil)
	if !ok {
		log.Warn("scan.alert.skipped_no_credentials")
		return
	}
	for _, tr := range results {
		if err := forwarder.ForwardFindings(ctx, tr.URL, tr.Findings); err != nil {
			log.Error("scan.alert.forward_failed", "target", tr.URL, "err", err)
		}
	}
}

// exitCode implements spec.md §6: 2 if every target failed, 3 if at
// least one Critical finding exists, else 0. Exit code 3 is always
// applied; no flag turns it off.
func exitCode(results []scan.TargetReport) int {
	if len(results) == 0 {
		return 0
	}

	allFailed := true
	hasCritical := false
	for _, tr := range results {
		if tr.Status == scan.StatusOK {
			allFailed = false
		}
		for _, f := range tr.Findings {
			if f.Severity == scan.SeverityCritical {
				hasCritical = true
			}
		}
	}

	if allFailed {
		return 2
	}
	if hasCritical {
		return 3
	}
	return 0
}

// httpClientFromEnv builds the HTTP client the orchestrator hands to its
// source-map fetcher, honoring HTTPS_PROXY/HTTP_PROXY via the standard
// transport (spec.md §6 "Environment"). Chunk-probe script fetches do not
// use it; they go through http.DefaultClient.
func httpClientFromEnv() *http.Client {
	return &http.Client{Transport: http.DefaultTransport}
}
