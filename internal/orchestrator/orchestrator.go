// Package orchestrator implements the per-target orchestrator (spec.md
// §4.7, C7): for one target, it sequences browser capture, iterative
// chunk/source-map expansion, extractor fan-out, filtering, registry
// classification, and severity assignment into a scan.TargetReport.
package orchestrator

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/depconfuse/internal/capture"
	"github.com/kraklabs/depconfuse/internal/chunk"
	"github.com/kraklabs/depconfuse/internal/extract"
	"github.com/kraklabs/depconfuse/internal/filter"
	"github.com/kraklabs/depconfuse/internal/findings"
	"github.com/kraklabs/depconfuse/internal/metrics"
	"github.com/kraklabs/depconfuse/internal/registry"
	"github.com/kraklabs/depconfuse/internal/scan"
	"github.com/kraklabs/depconfuse/internal/sourcemap"
)

// Orchestrator runs the C7 sequence for a single target.
type Orchestrator struct {
	capturer *capture.Capturer
	maps     *sourcemap.Fetcher
	extract  *extract.Engine
	filters  *filter.Stack
	reg      *registry.Client
	cfg      scan.Config
	log      *slog.Logger
	metrics  *metrics.Metrics // optional, nil when --metrics-addr is unset
}

// New builds an Orchestrator. httpClient backs the source-map fetcher;
// reg is the shared, process-wide registry client. m may be nil (metrics
// disabled).
func New(httpClient *http.Client, reg *registry.Client, cfg scan.Config, log *slog.Logger, m *metrics.Metrics) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		capturer: capture.NewCapturer(),
		maps:     sourcemap.NewFetcher(httpClient),
		extract:  extract.NewEngine(),
		filters:  filter.New(),
		reg:      reg,
		cfg:      cfg,
		log:      log,
		metrics:  m,
	}
}

// Run executes the full per-target sequence (§4.7 steps 2-7; step 1,
// session acquisition, is the scheduler's responsibility — session is
// passed in already leased).
func (o *Orchestrator) Run(ctx context.Context, target scan.Target, session *capture.Session) scan.TargetReport {
	start := time.Now()
	report := scan.TargetReport{URL: target.URL}

	scripts, err := o.capturer.Capture(ctx, target, session)
	if err != nil {
		report.Status = scan.StatusError
		report.Errors = append(report.Errors, err.Error())
		report.DurationMS = time.Since(start).Milliseconds()
		return report
	}
	if o.metrics != nil {
		o.metrics.ScriptsCaptured.Add(float64(scripts.Len()))
	}

	o.expand(ctx, target, scripts)

	if ctx.Err() != nil {
		report.Status = scan.StatusTimedOut
		report.DurationMS = time.Since(start).Milliseconds()
		return report
	}

	report.Findings = o.classify(ctx, scripts)
	report.Status = scan.StatusOK
	report.DurationMS = time.Since(start).Milliseconds()
	return report
}

// expand runs chunk discovery and source-map fetching to a fixpoint,
// bounded by MaxScripts and MaxChunkDepth (P6), per §4.7 step 3.
func (o *Orchestrator) expand(ctx context.Context, target scan.Target, scripts *scan.ScriptSet) {
	queue := chunk.NewQueue(o.cfg.MaxChunkDepth)

	seed := func(s scan.CapturedScript) {
		refs := chunk.Discover(s.SourceURL, s.Body)
		if strings.Contains(s.ContentType, "html") {
			refs = append(refs, chunk.DiscoverHTML(s.SourceURL, s.Body)...)
		}
		for _, u := range refs {
			if scripts.HasURL(u) {
				continue
			}
			queue.Push(s.SourceURL, s.Depth, []string{u})
		}
	}
	for _, s := range scripts.All() {
		seed(s)
	}

	for {
		if ctx.Err() != nil {
			return
		}
		if scripts.Len() >= o.cfg.MaxScripts {
			o.log.DebugContext(ctx, "scan.target.expand.capped", "target", target.URL, "scripts", scripts.Len())
			return
		}
		item, ok := queue.Pop()
		if !ok {
			return
		}
		if scripts.HasURL(item.URL) {
			continue
		}

		body, contentType, err := fetchScript(ctx, item.URL)
		if err != nil {
			continue // transient per-script fetch error: skip (spec.md §7)
		}
		captured := scan.NewCapturedScript(item.URL, body, contentType, scan.OriginChunkProbe, item.ReferrerURL, item.Depth)
		if !scripts.Add(captured) {
			continue
		}
		if o.metrics != nil {
			o.metrics.ScriptsCaptured.Inc()
		}
		seed(captured)
	}
}

// classify fans every captured script through the five extractors, the
// filter stack, and the registry client, and assembles the target's
// deduplicated Finding list (§4.7 steps 4-7). Per-script extraction is
// bounded fan-out (spec.md §5, default 32 via cfg.ExtractWorkers),
// mirroring the errgroup pattern used for the extractor fan-out within
// Engine.Run itself.
func (o *Orchestrator) classify(ctx context.Context, scripts *scan.ScriptSet) []scan.Finding {
	workers := o.cfg.ExtractWorkers
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	var allCandidates []scan.Candidate
	evidence := make(map[string][]scan.Candidate)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, s := range scripts.All() {
		s := s
		g.Go(func() error {
			smap, _ := o.maps.Fetch(gctx, s.SourceURL, s.Body)
			candidates, scriptEvidence := o.extract.Run(gctx, s.SourceURL, s.Body, smap)
			survivors := filter.FilterCandidates(o.filters, candidates)

			mu.Lock()
			allCandidates = append(allCandidates, survivors...)
			for name, ev := range scriptEvidence {
				evidence[name] = append(evidence[name], ev...)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // per-script extraction never errors; the group only bounds concurrency

	merged := scan.MergeCandidates(allCandidates)

	classified := make(map[string]scan.PackageClass, len(merged))
	for _, c := range merged {
		if o.cfg.SkipNpmCheck {
			classified[c.Name] = scan.ClassUnknown
			continue
		}
		class := o.reg.Classify(ctx, c.Name)
		classified[c.Name] = class
		if o.metrics != nil {
			o.metrics.RegistryLookups.WithLabelValues(registryOutcomeLabel(class)).Inc()
		}
	}

	// --skip-npm-check's contract (spec.md §6) is "emit all candidates
	// with class Unknown," the opposite of the ordinary rule that a
	// registry-failure Unknown is excluded from findings (§4.9) — Build
	// is told which case it's in so it only relaxes exclusion here.
	out := findings.Build(classified, evidence, o.cfg.SkipNpmCheck)
	out = findings.FilterMinConfidence(out, o.cfg.MinConfidence)
	if o.cfg.ScopedOnly {
		out = findings.FilterScopedOnly(out)
	}
	return out
}

// registryOutcomeLabel maps a classification to the RegistryLookups
// metric's outcome label.
func registryOutcomeLabel(class scan.PackageClass) string {
	switch class {
	case scan.ClassExists:
		return "hit"
	case scan.ClassUnknown:
		return "unknown"
	default: // NotFound, ScopeNotClaimed
		return "miss"
	}
}

func fetchScript(ctx context.Context, scriptURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scriptURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", errHTTPStatus(resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

type errHTTPStatus int

func (e errHTTPStatus) Error() string { return "chunk probe: unexpected HTTP status" }
