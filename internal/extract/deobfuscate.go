package extract

import (
	"context"
	"encoding/base64"
	"regexp"
	"strconv"
	"strings"

	"github.com/kraklabs/depconfuse/internal/filter"
	"github.com/kraklabs/depconfuse/internal/scan"
)

// DeobfuscateExtractor is E5: a fixed set of decoders applied to every
// string-producing expression that looks like a require()/import()
// argument. Decoded strings are re-fed into the filter stack by the
// caller; this extractor only decodes and scores confidence (spec.md
// §4.3, E5).
type DeobfuscateExtractor struct{}

// NewDeobfuscateExtractor returns a ready-to-use E5 extractor.
func NewDeobfuscateExtractor() *DeobfuscateExtractor { return &DeobfuscateExtractor{} }

var (
	reRequireAtob        = regexp.MustCompile(`require\s*\(\s*atob\(\s*["']([A-Za-z0-9+/=]+)["']\s*\)\s*\)`)
	reRequireBufferB64   = regexp.MustCompile(`require\s*\(\s*Buffer\.from\(\s*["']([A-Za-z0-9+/=]+)["']\s*,\s*["']base64["']\s*\)\.toString\(\)\s*\)`)
	reRequireHexEscapes  = regexp.MustCompile(`require\s*\(\s*["']((?:\\x[0-9a-fA-F]{2})+)["']\s*\)`)
	reFromCharCode       = regexp.MustCompile(`require\s*\(\s*String\.fromCharCode\(\s*([\d,\s]+)\)\s*\)`)
	reArrayJoin          = regexp.MustCompile(`require\s*\(\s*\[\s*((?:["'][^"']*["']\s*,?\s*)+)\]\.join\(\s*["']?["']?\s*\)\s*\)`)
	reConcatLiterals     = regexp.MustCompile(`require\s*\(\s*((?:["'][^"']*["']\s*\+\s*)+["'][^"']*["'])\s*\)`)
	reReverseHelper      = regexp.MustCompile(`require\s*\(\s*["']([^"']+)["']\s*\.split\(['"]{2}\)\.reverse\(\)\.join\(['"]{2}\)\s*\)`)
	reHexEscapeSequence  = regexp.MustCompile(`\\x([0-9a-fA-F]{2})`)
	reVarBinding         = regexp.MustCompile(`(?:const|let|var)\s+(\w+)\s*=\s*["']([^"']*)["']\s*;`)
	reRequireVarConcat   = regexp.MustCompile(`require\s*\(\s*((?:\w+\s*\+\s*)+\w+)\s*\)`)
	reRequireTemplate    = regexp.MustCompile("require\\s*\\(\\s*`([^`]*)`\\s*\\)")
	reTemplateInterp     = regexp.MustCompile(`\$\{(\w+)\}`)
)

// Extract implements the extract.Extractor capability.
func (e *DeobfuscateExtractor) Extract(_ context.Context, scriptURL string, body []byte) []scan.Candidate {
	text := string(body)
	var out []scan.Candidate

	appendDecoded := func(decoded, matched string) {
		if decoded == "" {
			return
		}
		conf := scan.ConfidenceMedium
		if !isWellFormedName(decoded) {
			conf = scan.ConfidenceLow
		}
		out = append(out, scan.Candidate{
			Name:       decoded,
			Extractor:  scan.ExtractorDeobfuscate,
			ScriptURL:  scriptURL,
			Context:    matched,
			Confidence: conf,
		})
	}

	for _, m := range reRequireAtob.FindAllStringSubmatch(text, -1) {
		if raw, err := base64.StdEncoding.DecodeString(m[1]); err == nil {
			appendDecoded(string(raw), m[0])
		}
	}
	for _, m := range reRequireBufferB64.FindAllStringSubmatch(text, -1) {
		if raw, err := base64.StdEncoding.DecodeString(m[1]); err == nil {
			appendDecoded(string(raw), m[0])
		}
	}
	for _, m := range reRequireHexEscapes.FindAllStringSubmatch(text, -1) {
		appendDecoded(decodeHexEscapes(m[1]), m[0])
	}
	for _, m := range reFromCharCode.FindAllStringSubmatch(text, -1) {
		appendDecoded(decodeCharCodes(m[1]), m[0])
	}
	for _, m := range reArrayJoin.FindAllStringSubmatch(text, -1) {
		appendDecoded(decodeArrayJoin(m[1]), m[0])
	}
	for _, m := range reConcatLiterals.FindAllStringSubmatch(text, -1) {
		appendDecoded(decodeConcat(m[1]), m[0])
	}
	for _, m := range reReverseHelper.FindAllStringSubmatch(text, -1) {
		appendDecoded(reverseString(m[1]), m[0])
	}

	bindings := parseVarBindings(text)
	for _, m := range reRequireVarConcat.FindAllStringSubmatch(text, -1) {
		if decoded, ok := resolveVarConcat(m[1], bindings); ok {
			appendDecoded(decoded, m[0])
		}
	}
	for _, m := range reRequireTemplate.FindAllStringSubmatch(text, -1) {
		if decoded, ok := resolveTemplateLiteral(m[1], bindings); ok {
			appendDecoded(decoded, m[0])
		}
	}

	return out
}

// parseVarBindings collects single-assignment const/let/var string
// bindings (e.g. `const p1 = "@acme";`) so later passes can resolve
// identifier references inside a require() argument. Bundlers commonly
// split a package name across a handful of such bindings before
// reassembling it at the call site (spec.md §4.3, E5).
func parseVarBindings(text string) map[string]string {
	bindings := make(map[string]string)
	for _, m := range reVarBinding.FindAllStringSubmatch(text, -1) {
		bindings[m[1]] = m[2]
	}
	return bindings
}

// resolveVarConcat resolves a `p1 + p2 + ...` require() argument against
// bindings, failing closed (ok=false) if any identifier is unbound —
// matching reConcatLiterals' literal-only sibling, this one is
// identifier-only.
func resolveVarConcat(expr string, bindings map[string]string) (string, bool) {
	var b strings.Builder
	for _, part := range strings.Split(expr, "+") {
		name := strings.TrimSpace(part)
		val, ok := bindings[name]
		if !ok {
			return "", false
		}
		b.WriteString(val)
	}
	return b.String(), true
}

// resolveTemplateLiteral resolves `${name}` interpolations inside a
// require() template-literal argument against bindings, leaving literal
// text in place. It fails closed if any interpolated identifier is
// unbound.
func resolveTemplateLiteral(expr string, bindings map[string]string) (string, bool) {
	ok := true
	resolved := reTemplateInterp.ReplaceAllStringFunc(expr, func(match string) string {
		name := reTemplateInterp.FindStringSubmatch(match)[1]
		val, found := bindings[name]
		if !found {
			ok = false
			return match
		}
		return val
	})
	if !ok {
		return "", false
	}
	return resolved, true
}

func decodeHexEscapes(s string) string {
	return reHexEscapeSequence.ReplaceAllStringFunc(s, func(esc string) string {
		m := reHexEscapeSequence.FindStringSubmatch(esc)
		n, err := strconv.ParseInt(m[1], 16, 32)
		if err != nil {
			return ""
		}
		return string(rune(n))
	})
}

func decodeCharCodes(list string) string {
	parts := strings.Split(list, ",")
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return ""
		}
		b.WriteRune(rune(n))
	}
	return b.String()
}

var reQuotedLiteral = regexp.MustCompile(`["']([^"']*)["']`)

func decodeArrayJoin(list string) string {
	var b strings.Builder
	for _, m := range reQuotedLiteral.FindAllStringSubmatch(list, -1) {
		b.WriteString(m[1])
	}
	return b.String()
}

func decodeConcat(expr string) string {
	var b strings.Builder
	for _, m := range reQuotedLiteral.FindAllStringSubmatch(expr, -1) {
		b.WriteString(m[1])
	}
	return b.String()
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// isWellFormedName reports whether a decoded string passes the package
// name grammar, used to pick E5's confidence: medium on success, low
// when the decoder yields garbage (spec.md §4.3, E5).
func isWellFormedName(s string) bool {
	return filter.WellFormed(s)
}
