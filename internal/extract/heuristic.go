package extract

import (
	"context"
	"regexp"

	"github.com/kraklabs/depconfuse/internal/scan"
)

// HeuristicExtractor is E4: a small library of per-bundler regular
// expressions that recognize embedded package references outside
// manifests (webpackChunk pushes, SWC interop-require wrappers, Turbopack
// module registration). Confidence: medium.
type HeuristicExtractor struct{}

// NewHeuristicExtractor returns a ready-to-use E4 extractor.
func NewHeuristicExtractor() *HeuristicExtractor { return &HeuristicExtractor{} }

var heuristicPatterns = []*regexp.Regexp{
	// webpackChunk_PROJECT.push([[n],{"@scope/pkg": ...}])
	regexp.MustCompile(`webpackChunk\w*\.push\(\s*\[\s*\[[^\]]*\]\s*,\s*\{\s*["']([^"']+)["']`),
	// SWC: _interop_require_default(require("pkg"))
	regexp.MustCompile(`_interop_require(?:_wildcard|_default)?\s*\(\s*require\(\s*["']([^"']+)["']\s*\)\s*\)`),
	// Turbopack module registration: __turbopack_require__("[project]/pkg")
	regexp.MustCompile(`__turbopack_(?:require|esm|external_require)__\s*\(\s*["']([^"']+)["']`),
	// generic runtime require-map entry: "pkg": function(module, exports, require)
	regexp.MustCompile(`["']([\w@./-]+)["']\s*:\s*function\s*\(\s*module\s*,\s*exports\s*,\s*(?:__webpack_require__|require)\s*\)`),
}

// Extract implements the extract.Extractor capability.
func (e *HeuristicExtractor) Extract(_ context.Context, scriptURL string, body []byte) []scan.Candidate {
	text := string(body)
	var out []scan.Candidate
	for _, re := range heuristicPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			name := text[m[2]:m[3]]
			if name == "" {
				continue
			}
			lo, hi := m[0]-snippetRadius, m[1]+snippetRadius
			if lo < 0 {
				lo = 0
			}
			if hi > len(text) {
				hi = len(text)
			}
			out = append(out, scan.Candidate{
				Name:       name,
				Extractor:  scan.ExtractorHeuristic,
				ScriptURL:  scriptURL,
				Context:    text[lo:hi],
				Confidence: scan.ConfidenceMedium,
			})
		}
	}
	return out
}
