// Package report renders a completed scan as either a human-readable
// terminal summary (internal/ui) or the machine-readable JSON schema of
// spec.md §6.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kraklabs/depconfuse/internal/scan"
	"github.com/kraklabs/depconfuse/internal/ui"
)

const schemaVersion = "1"

// Build assembles the top-level Report from per-target results. nowRFC3339
// and runID are injected by the callers (cmd/depconfuse supplies the
// timestamp, cli.RunScan the run ID) since this package
// never calls time.Now or generates IDs directly, keeping report assembly
// pure and testable. runID correlates this report with the log lines and
// any Telegram alerts emitted by the same invocation.
func Build(targets []scan.TargetReport, nowRFC3339 string, runID string) scan.Report {
	return scan.Report{
		Version:   schemaVersion,
		RunID:     runID,
		ScannedAt: nowRFC3339,
		Targets:   targets,
	}
}

// WriteJSON serializes r to w as indented JSON matching spec.md §6.
func WriteJSON(w io.Writer, r scan.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteTerminal renders r as a colorized, human-readable summary. quiet
// suppresses targets with no findings.
func WriteTerminal(u *ui.UI, r scan.Report, quiet bool) {
	for _, t := range r.Targets {
		if quiet && len(t.Findings) == 0 {
			continue
		}

		u.Printf("%s", t.URL)
		switch t.Status {
		case scan.StatusOK:
			u.Printf(" (%dms)\n", t.DurationMS)
		case scan.StatusTimedOut:
			u.Printf(" [timed out]\n")
		case scan.StatusError:
			u.Printf(" [error]\n")
		}
		for _, e := range t.Errors {
			u.Dimf("  error: %s\n", e)
		}

		if len(t.Findings) == 0 {
			u.Dimf("  no findings\n")
			continue
		}

		for _, f := range t.Findings {
			c := u.SeverityColor(string(f.Severity))
			c.Fprintf(u.Out(), "  [%s] %s", f.Severity, f.Name)
			u.Printf(" (%s, confidence=%s)\n", f.Class, f.Confidence)
			for _, ev := range f.Evidence {
				u.Dimf("    via %s: %s\n", ev.Extractor, truncate(ev.Context, 80))
			}
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// Summary is a short one-line scan outcome, written to the debug log after
// the terminal report.
func Summary(r scan.Report) string {
	var critical, high int
	for _, t := range r.Targets {
		for _, f := range t.Findings {
			switch f.Severity {
			case scan.SeverityCritical:
				critical++
			case scan.SeverityHigh:
				high++
			}
		}
	}
	return fmt.Sprintf("%d targets scanned, %d critical, %d high", len(r.Targets), critical, high)
}
