// Package findings assigns severity to classified candidates and
// assembles the deduplicated, confidence-ranked Finding list for a
// target (spec.md §4.9, C9).
package findings

import (
	"sort"
	"strings"

	"github.com/kraklabs/depconfuse/internal/scan"
)

// internalTokens are the literal substrings the spec's Open Question (b)
// pins the "internal-sounding" heuristic to.
var internalTokens = []string{
	"internal", "private", "corp", "acme", "company",
}

// looksInternal reports whether an unscoped name reads as an internal
// package: it contains one of the pinned tokens, or is hyphen-segmented
// with a segment that is itself one of those tokens.
func looksInternal(name string) bool {
	lower := strings.ToLower(name)
	for _, tok := range internalTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// Severity assigns the severity of §4.9's table. isScoped indicates
// whether name carries an "@scope/" prefix. skipNpmCheck distinguishes
// the two ways a candidate ends up classified Unknown: a genuine
// registry-lookup failure (excluded, per §4.9's table), versus
// --skip-npm-check forcing every candidate to Unknown without ever
// querying the registry (still emitted, per §6's flag contract).
func Severity(class scan.PackageClass, isScoped bool, name string, skipNpmCheck bool) (scan.Severity, bool) {
	switch class {
	case scan.ClassExists:
		return scan.SeverityInfo, true
	case scan.ClassNotFound:
		if isScoped {
			return scan.SeverityHigh, true
		}
		if looksInternal(name) {
			return scan.SeverityHigh, true
		}
		return scan.SeverityMedium, true
	case scan.ClassScopeNotClaimed:
		return scan.SeverityCritical, true
	case scan.ClassUnknown:
		if skipNpmCheck {
			return scan.SeverityUnknown, true
		}
		return "", false
	default:
		return "", false
	}
}

// Build assembles the deduplicated Finding list for one target: for each
// surviving, classified candidate it assigns severity (dropping Unknown
// per §4.9, unless skipNpmCheck forced it — see Severity), takes the max
// confidence across contributing extractors via the evidence map, and
// sorts deterministically (severity desc, name asc) per §5 "Ordering
// guarantees".
func Build(classified map[string]scan.PackageClass, evidence map[string][]scan.Candidate, skipNpmCheck bool) []scan.Finding {
	var out []scan.Finding
	for name, class := range classified {
		isScoped := strings.HasPrefix(name, "@")
		sev, ok := Severity(class, isScoped, name, skipNpmCheck)
		if !ok {
			continue
		}

		contributors := evidence[name]
		conf := scan.ConfidenceLow
		var ev []scan.EvidenceEntry
		for _, c := range contributors {
			if c.Confidence.Rank() > conf.Rank() {
				conf = c.Confidence
			}
			ev = append(ev, scan.EvidenceEntry{
				Extractor: c.Extractor,
				ScriptURL: c.ScriptURL,
				Context:   c.Context,
			})
		}

		out = append(out, scan.Finding{
			Name:       name,
			Class:      class,
			Severity:   sev,
			Confidence: conf,
			Evidence:   ev,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity.Less(out[j].Severity)
		}
		return out[i].Name < out[j].Name
	})

	return out
}

// FilterMinConfidence drops findings below threshold, applied last per
// §4.9 "The --min-confidence filter applies last."
func FilterMinConfidence(in []scan.Finding, min scan.Confidence) []scan.Finding {
	out := in[:0:0]
	for _, f := range in {
		if f.Confidence.Rank() >= min.Rank() {
			out = append(out, f)
		}
	}
	return out
}

// FilterScopedOnly drops unscoped findings when --scoped-only is set.
func FilterScopedOnly(in []scan.Finding) []scan.Finding {
	out := in[:0:0]
	for _, f := range in {
		if strings.HasPrefix(f.Name, "@") {
			out = append(out, f)
		}
	}
	return out
}
