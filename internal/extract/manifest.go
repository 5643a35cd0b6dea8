package extract

import (
	"context"
	"regexp"

	"github.com/kraklabs/depconfuse/internal/scan"
)

// ManifestExtractor is E3: scans a script for known bundler manifest
// shapes (webpack module-factory tables, Vite/Rollup chunk preambles,
// Parcel's module registry, esbuild's __commonJS/__toESM blocks, Angular
// lazy-chunk lists) and applies the same node_modules/ segment
// extraction as E2. Confidence: high.
type ManifestExtractor struct{}

// NewManifestExtractor returns a ready-to-use E3 extractor.
func NewManifestExtractor() *ManifestExtractor { return &ManifestExtractor{} }

// reManifestQuotedPath matches a quoted path used as a webpack module
// factory key, a Parcel module-registry key, or an esbuild __commonJS /
// __toESM block key — all share the "quoted-path-as-object-key" shape.
var reManifestQuotedPath = regexp.MustCompile(`["']((?:\./|\.\./|/)?[\w@./-]*node_modules/[\w@./-]+)["']\s*:`)

// reViteMapDeps matches a Vite/Rollup __vite__mapDeps preamble entry.
var reViteMapDeps = regexp.MustCompile(`__vite__mapDeps\(\s*\[[^\]]*\]\s*,\s*\[?\s*["']([^"']+)["']`)

// reParcelRegistry matches a Parcel module registry's stringified path.
var reParcelRegistry = regexp.MustCompile(`parcelRequire\.register\s*\(\s*["']([^"']+)["']`)

// reAngularLazyChunk matches an Angular lazy-loaded chunk list entry that
// embeds a node_modules path (e.g. loadChildren module specifiers).
var reAngularLazyChunk = regexp.MustCompile(`loadChildren\s*:\s*\(\s*\)\s*=>\s*import\(\s*["']([^"']+)["']`)

// Extract implements the extract.Extractor capability.
func (e *ManifestExtractor) Extract(_ context.Context, scriptURL string, body []byte) []scan.Candidate {
	var out []scan.Candidate
	text := string(body)

	for _, m := range reManifestQuotedPath.FindAllStringSubmatch(text, -1) {
		addManifestPackage(&out, scriptURL, text, m[1], m[0])
	}
	for _, m := range reViteMapDeps.FindAllStringSubmatch(text, -1) {
		addManifestPackage(&out, scriptURL, text, m[1], m[0])
	}
	for _, m := range reParcelRegistry.FindAllStringSubmatch(text, -1) {
		addManifestPackage(&out, scriptURL, text, m[1], m[0])
	}
	for _, m := range reAngularLazyChunk.FindAllStringSubmatch(text, -1) {
		addManifestPackage(&out, scriptURL, text, m[1], m[0])
	}

	return out
}

func addManifestPackage(out *[]scan.Candidate, scriptURL, text, path, matched string) {
	name, ok := packageFromNodeModulesPath(path)
	if !ok {
		name, ok = packageFromAbsoluteScopedPath(path)
	}
	if !ok {
		return
	}
	*out = append(*out, scan.Candidate{
		Name:       name,
		Extractor:  scan.ExtractorManifest,
		ScriptURL:  scriptURL,
		Context:    matched,
		Confidence: scan.ConfidenceHigh,
	})
}
