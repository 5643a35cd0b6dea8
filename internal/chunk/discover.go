// Package chunk implements the chunk discoverer (spec.md §4.5): finds
// lazy-chunk URLs embedded in a script body, resolves them against the
// referring script's URL, and hands back new URLs for the orchestrator's
// bounded BFS work queue.
package chunk

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	// __webpack_require__.p + "chunk-name.js"
	reWebpackPublicPath = regexp.MustCompile(`__webpack_require__\.p\s*\+\s*["']([^"']+\.js)["']`)
	// new URL('/assets/chunk.js', import.meta.url) — Vite
	reViteImportMetaURL = regexp.MustCompile(`new\s+URL\(\s*["']([^"']+\.js)["']\s*,\s*import\.meta\.url\s*\)`)
	// generic manifest-style chunk id -> path entries
	reChunkManifestEntry = regexp.MustCompile(`["']([a-zA-Z0-9_.\-\/]+\.js)["']\s*:\s*["'][0-9a-fA-F]+["']`)
)

// Discover scans body for chunk URL references and resolves each against
// referrerURL, returning the set of absolute URLs found (may contain
// duplicates; the caller's ScriptSet dedups against already-captured
// URLs).
func Discover(referrerURL string, body []byte) []string {
	text := string(body)
	var found []string

	for _, re := range []*regexp.Regexp{reWebpackPublicPath, reViteImportMetaURL, reChunkManifestEntry} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			found = append(found, m[1])
		}
	}

	out := make([]string, 0, len(found))
	for _, ref := range found {
		if resolved, ok := resolve(referrerURL, ref); ok {
			out = append(out, resolved)
		}
	}
	return out
}

// DiscoverHTML finds <script src="..."> references in an HTML document,
// resolving each against pageURL. A chunk probe occasionally lands on an
// HTML response rather than JS — a route-based micro-frontend fragment,
// a redirected error page — and a regex pass over markup is unreliable
// once attributes stop following a predictable quoting convention.
// Grounded on safepic-tsmap-extract/tsmap/crawl.go's parseScriptsHTML.
func DiscoverHTML(pageURL string, body []byte) []string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var out []string
	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "script") {
			for _, a := range n.Attr {
				if strings.EqualFold(a.Key, "src") && strings.TrimSpace(a.Val) != "" {
					if rel, err := url.Parse(strings.TrimSpace(a.Val)); err == nil {
						resolved := base.ResolveReference(rel).String()
						if !seen[resolved] {
							seen[resolved] = true
							out = append(out, resolved)
						}
					}
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func resolve(referrerURL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	base, err := url.Parse(referrerURL)
	if err != nil {
		return "", false
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(rel)
	if !strings.HasSuffix(resolved.Path, ".js") && !strings.HasSuffix(resolved.Path, ".mjs") {
		return "", false
	}
	return resolved.String(), true
}
