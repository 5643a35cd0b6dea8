package filter

import (
	"net/url"
	"regexp"
	"strings"
)

// reScopedName and reUnscopedName implement the package-name grammar from
// spec.md §4.2 layer 0.
var (
	reScopedName   = regexp.MustCompile(`^@[a-z0-9][a-z0-9-_.]*/[a-z0-9][a-z0-9-_.]*$`)
	reUnscopedName = regexp.MustCompile(`^[a-z0-9][a-z0-9-_.]*$`)
)

const maxNameLength = 214

// layerWellFormed is filter layer 0: the candidate must match the
// package-name grammar.
func layerWellFormed(name, _ string) Verdict {
	if !WellFormed(name) {
		return Verdict{Keep: false, Reason: "does not match package-name grammar"}
	}
	return Verdict{Keep: true}
}

// WellFormed reports whether name satisfies the package-name grammar of
// spec.md §4.2 layer 0, independent of the rest of the filter stack. It
// is exported so extractors (E5's deobfuscation confidence scoring) can
// reuse the exact same grammar without re-running the whole stack.
func WellFormed(name string) bool {
	if name == "" || len(name) > maxNameLength {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return false
	}
	return reScopedName.MatchString(name) || reUnscopedName.MatchString(name)
}

var disallowedExtensions = []string{".js", ".css", ".svg", ".png", ".map", ".json", ".ts"}

// layerPathLiteral is filter layer 1: reject relative/absolute file paths.
func layerPathLiteral(name, _ string) Verdict {
	if strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../") || strings.HasPrefix(name, "/") {
		return Verdict{Keep: false, Reason: "looks like a file path"}
	}
	if strings.Contains(name, "\\") {
		return Verdict{Keep: false, Reason: "contains a backslash path separator"}
	}
	lower := strings.ToLower(name)
	for _, ext := range disallowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return Verdict{Keep: false, Reason: "has a disallowed file extension " + ext}
		}
	}
	return Verdict{Keep: true}
}

// layerURL is filter layer 2: reject absolute URLs.
func layerURL(name, _ string) Verdict {
	if strings.Contains(name, "://") {
		return Verdict{Keep: false, Reason: "contains a URL scheme separator"}
	}
	if u, err := url.Parse(name); err == nil && u.IsAbs() {
		return Verdict{Keep: false, Reason: "parses as an absolute URL"}
	}
	return Verdict{Keep: true}
}

var reBEM = regexp.MustCompile(`__|--`)

// layerCSSSelector is filter layer 3: reject CSS class / BEM-style names.
func layerCSSSelector(name, _ string) Verdict {
	if strings.HasPrefix(name, "-") {
		return Verdict{Keep: false, Reason: "leading hyphen CSS heuristic"}
	}
	if reBEM.MatchString(name) {
		return Verdict{Keep: false, Reason: "BEM-style __ or -- separator"}
	}
	for _, prefix := range []string{"webkit-", "moz-", "ms-", "o-"} {
		if strings.HasPrefix(name, prefix) {
			return Verdict{Keep: false, Reason: "vendor-prefixed CSS heuristic"}
		}
	}
	return Verdict{Keep: true}
}

var reLocaleKey = regexp.MustCompile(`^[a-z0-9]+(\.[a-z0-9]+){1,2}$`)

// layerI18nKey is filter layer 4: reject i18n/locale-style dotted keys.
func layerI18nKey(name, _ string) Verdict {
	if strings.Contains(name, "..") {
		return Verdict{Keep: false, Reason: "consecutive dots"}
	}
	if !strings.HasPrefix(name, "@") && !strings.Contains(name, "-") && reLocaleKey.MatchString(name) {
		return Verdict{Keep: false, Reason: "locale-key heuristic: dotted lowercase segments, no hyphen"}
	}
	return Verdict{Keep: true}
}

// bundlerInternalDenylist are names emitted as chunk identifiers, runtime
// helpers, or hot-update artifacts by common bundlers.
var bundlerInternalDenylist = map[string]bool{
	"webpack":                true,
	"__webpack_require__":    true,
	"__webpack_exports__":    true,
	"__webpack_modules__":    true,
	"__esModule":             true,
	"regeneratorRuntime":     true,
	"webpackJsonp":           true,
	"webpackChunkName":       true,
	"parcelRequire":          true,
	"__vite__mapDeps":        true,
	"__toESM":                true,
	"__toCommonJS":           true,
	"__commonJS":             true,
	"__exportStar":           true,
	"__reExport":             true,
	"Symbol.toStringTag":     true,
}

var bundlerRuntimeChunkPrefixes = []string{"chunk-", "runtime-", "vendors-", "webpack-runtime-"}

// layerBundlerInternal is filter layer 5.
func layerBundlerInternal(name, _ string) Verdict {
	if bundlerInternalDenylist[name] {
		return Verdict{Keep: false, Reason: "bundler-internal denylist match"}
	}
	for _, prefix := range bundlerRuntimeChunkPrefixes {
		if strings.HasPrefix(name, prefix) {
			return Verdict{Keep: false, Reason: "runtime chunk prefix " + prefix}
		}
	}
	return Verdict{Keep: true}
}

// nodeBuiltins is the standard built-in module list for the ecosystem.
var nodeBuiltins = map[string]bool{
	"assert": true, "buffer": true, "child_process": true, "cluster": true,
	"crypto": true, "dgram": true, "dns": true, "domain": true, "events": true,
	"fs": true, "http": true, "http2": true, "https": true, "net": true,
	"os": true, "path": true, "perf_hooks": true, "process": true,
	"punycode": true, "querystring": true, "readline": true, "stream": true,
	"string_decoder": true, "timers": true, "tls": true, "tty": true,
	"url": true, "util": true, "v8": true, "vm": true, "wasi": true,
	"worker_threads": true, "zlib": true, "constants": true, "module": true,
	"repl": true,
}

// layerBuiltin is filter layer 6: reject Node.js built-in modules,
// including the explicit "node:" prefix form.
func layerBuiltin(name, _ string) Verdict {
	n := strings.TrimPrefix(name, "node:")
	if nodeBuiltins[n] {
		return Verdict{Keep: false, Reason: "standard built-in module"}
	}
	return Verdict{Keep: true}
}

// allowlistBypassReason marks a Verdict that should short-circuit the
// remaining layers, distinguishing it from an ordinary pass-through keep.
const allowlistBypassReason = "well-known public package"

// layerAllowlistBypass is filter layer 7: well-known public packages
// short-circuit to keep (still emitted as Info findings downstream).
// Names outside the allowlist simply pass through to the remaining
// layers unchanged.
func layerAllowlistBypass(name, _ string) Verdict {
	if WellKnownPackages[name] {
		return Verdict{Keep: true, Reason: allowlistBypassReason}
	}
	return Verdict{Keep: true}
}

var reVowelCluster = regexp.MustCompile(`[aeiou]{2}|[aeiou].*[aeiou]`)

// layerMinifiedIdentifier is filter layer 8: reject 1-2 char identifiers
// and short random-looking identifiers with no hyphen and no vowel
// cluster.
func layerMinifiedIdentifier(name, _ string) Verdict {
	bare := strings.TrimPrefix(name, "@")
	if idx := strings.Index(bare, "/"); idx >= 0 {
		bare = bare[idx+1:]
	}
	if len(bare) <= 2 {
		return Verdict{Keep: false, Reason: "1-2 character identifier"}
	}
	if len(bare) < 6 && !strings.Contains(bare, "-") && !reVowelCluster.MatchString(bare) {
		return Verdict{Keep: false, Reason: "short random-looking identifier"}
	}
	return Verdict{Keep: true}
}

var (
	reLogPrefix   = regexp.MustCompile(`(?i)(console\.(log|warn|error|info|debug)|logger\.\w+)\s*\(\s*["'\x60][^"'\x60]*$`)
	reCSSRuleBody = regexp.MustCompile(`[.#][\w-]+\s*\{[^}]*$`)
	reHTMLAttr    = regexp.MustCompile(`<[a-zA-Z][^>]*\s(class|id|style)\s*=\s*["'][^"']*$`)
)

// layerContextRevalidation is filter layer 9: reject if the match context
// shows the candidate appears only inside a log message, CSS rule body,
// or HTML attribute literal.
func layerContextRevalidation(_ string, ctx string) Verdict {
	trimmed := strings.TrimSpace(ctx)
	if trimmed == "" {
		return Verdict{Keep: true}
	}
	if reLogPrefix.MatchString(trimmed) {
		return Verdict{Keep: false, Reason: "appears inside a log message literal"}
	}
	if reCSSRuleBody.MatchString(trimmed) {
		return Verdict{Keep: false, Reason: "appears inside a CSS rule body"}
	}
	if reHTMLAttr.MatchString(trimmed) {
		return Verdict{Keep: false, Reason: "appears inside an HTML attribute literal"}
	}
	return Verdict{Keep: true}
}
