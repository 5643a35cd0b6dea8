// Package sourcemap implements the source-map fetcher (spec.md §4.4):
// resolve a script's .map file by trailing comment or URL probe, decode
// it, and hand back its sources[] list. Grounded on the source-map
// reference parsing in safepic-tsmap-extract/tsmap-extract.go, adapted
// from a standalone CLI step into a per-script fetch stage.
package sourcemap

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// SourceMap is the decoded JSON of a .map file (spec.md §3).
type SourceMap struct {
	Version        int      `json:"version"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
}

var (
	reMappingComment = regexp.MustCompile(`//[#@]\s*sourceMappingURL=([^\s]+)`)
	reDataURI        = regexp.MustCompile(`^data:application/json(?:;charset=[^;]+)?;base64,(.+)$`)
)

// Fetcher resolves and fetches source maps over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher using client for outbound requests; a nil
// client is replaced by one with a 30-second timeout. The orchestrator's
// chunk-probe script fetches do not go through this client.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch resolves a source map for a script. It honors a trailing
// `//# sourceMappingURL=...` comment when present, decoding data URIs
// inline without a network round-trip; otherwise it probes
// `<scriptURL>.map` once. All failures are silent — the fetcher returns
// (nil, nil) rather than propagating an error into the pipeline.
func (f *Fetcher) Fetch(ctx context.Context, scriptURL string, body []byte) (*SourceMap, error) {
	if ref := findMappingReference(body); ref != "" {
		if m := reDataURI.FindStringSubmatch(ref); m != nil {
			return decodeDataURI(m[1])
		}
		resolved, err := resolveRelative(scriptURL, ref)
		if err == nil {
			if sm, ok := f.fetchURL(ctx, resolved); ok {
				return sm, nil
			}
		}
	}

	probeURL := scriptURL + ".map"
	if sm, ok := f.fetchURL(ctx, probeURL); ok {
		return sm, nil
	}
	return nil, nil
}

func findMappingReference(body []byte) string {
	m := reMappingComment.FindSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(string(m[1]))
}

func decodeDataURI(encoded string) (*SourceMap, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, nil
	}
	var sm SourceMap
	if err := json.Unmarshal(raw, &sm); err != nil {
		return nil, nil
	}
	return &sm, nil
}

func resolveRelative(scriptURL, ref string) (string, error) {
	base, err := url.Parse(scriptURL)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}

func (f *Fetcher) fetchURL(ctx context.Context, mapURL string) (*SourceMap, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mapURL, nil)
	if err != nil {
		return nil, false
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	var sm SourceMap
	if err := json.NewDecoder(resp.Body).Decode(&sm); err != nil {
		return nil, false
	}
	return &sm, true
}
