package extract

import (
	"context"

	"github.com/kraklabs/depconfuse/internal/scan"
	"github.com/kraklabs/depconfuse/internal/sourcemap"
)

// SourceMapExtractor is E2: reads a decoded source map's sources[] array
// and isolates the package segment of every node_modules/ path (or
// absolute @scope/pkg path). Confidence: high.
type SourceMapExtractor struct{}

// NewSourceMapExtractor returns a ready-to-use E2 extractor.
func NewSourceMapExtractor() *SourceMapExtractor { return &SourceMapExtractor{} }

// Extract implements the extract.Extractor capability; smap is nil when
// no source map was resolved for the script (the fetcher silently drops
// failures per spec.md §4.4).
func (e *SourceMapExtractor) Extract(_ context.Context, scriptURL string, smap *sourcemap.SourceMap) []scan.Candidate {
	if smap == nil {
		return nil
	}

	var out []scan.Candidate
	for _, src := range smap.Sources {
		name, ok := packageFromNodeModulesPath(src)
		if !ok {
			name, ok = packageFromAbsoluteScopedPath(src)
		}
		if !ok {
			continue
		}
		out = append(out, scan.Candidate{
			Name:       name,
			Extractor:  scan.ExtractorSourceMap,
			ScriptURL:  scriptURL,
			Context:    src,
			Confidence: scan.ConfidenceHigh,
		})
	}
	return out
}
