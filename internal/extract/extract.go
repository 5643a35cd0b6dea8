package extract

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/depconfuse/internal/scan"
	"github.com/kraklabs/depconfuse/internal/sourcemap"
)

// Engine runs all five extractors concurrently over a single script and
// unions their candidates. Extractors are CPU-bound and pure; they never
// suspend (spec.md §5), so the fan-out here is a plain errgroup with one
// goroutine per extractor and no worker limit, rather than a dedicated pool.
type Engine struct {
	syntactic   *SyntacticExtractor
	sourceMap   *SourceMapExtractor
	manifest    *ManifestExtractor
	heuristic   *HeuristicExtractor
	deobfuscate *DeobfuscateExtractor
}

// NewEngine builds the five-extractor Engine.
func NewEngine() *Engine {
	return &Engine{
		syntactic:   NewSyntacticExtractor(),
		sourceMap:   NewSourceMapExtractor(),
		manifest:    NewManifestExtractor(),
		heuristic:   NewHeuristicExtractor(),
		deobfuscate: NewDeobfuscateExtractor(),
	}
}

// Run fans out the five extractors over one script and returns the
// merged, deduplicated candidate list (scan.MergeCandidates), plus the
// full per-name evidence map for the findings model.
func (e *Engine) Run(ctx context.Context, scriptURL string, body []byte, smap *sourcemap.SourceMap) ([]scan.Candidate, map[string][]scan.Candidate) {
	results := make([][]scan.Candidate, 5)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { results[0] = e.syntactic.Extract(gctx, scriptURL, body); return nil })
	g.Go(func() error { results[1] = e.sourceMap.Extract(gctx, scriptURL, smap); return nil })
	g.Go(func() error { results[2] = e.manifest.Extract(gctx, scriptURL, body); return nil })
	g.Go(func() error { results[3] = e.heuristic.Extract(gctx, scriptURL, body); return nil })
	g.Go(func() error { results[4] = e.deobfuscate.Extract(gctx, scriptURL, body); return nil })
	_ = g.Wait() // extractors never return an error; a parse-error in one never blocks the others (spec.md §7)

	merged := scan.MergeCandidates(results...)
	evidence := scan.Evidence(results...)
	return merged, evidence
}
