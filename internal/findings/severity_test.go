package findings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/depconfuse/internal/scan"
)

func TestSeverityTable(t *testing.T) {
	cases := []struct {
		name         string
		class        scan.PackageClass
		scoped       bool
		pkg          string
		skipNpmCheck bool
		wantSev      scan.Severity
		wantKept     bool
	}{
		{"exists", scan.ClassExists, false, "lodash", false, scan.SeverityInfo, true},
		{"scoped-not-found", scan.ClassNotFound, true, "@xq9zk7823/design-system", false, scan.SeverityHigh, true},
		{"unscoped-not-found-internal", scan.ClassNotFound, false, "private-logger", false, scan.SeverityHigh, true},
		{"unscoped-not-found-generic", scan.ClassNotFound, false, "foobar-util", false, scan.SeverityMedium, true},
		{"unscoped-not-found-company-token", scan.ClassNotFound, false, "company-internal-utils", false, scan.SeverityHigh, true},
		{"scope-not-claimed", scan.ClassScopeNotClaimed, true, "@xq9zk7823/auth-sdk", false, scan.SeverityCritical, true},
		{"unknown-excluded", scan.ClassUnknown, false, "whatever", false, "", false},
		{"unknown-emitted-when-skip-npm-check", scan.ClassUnknown, false, "whatever", true, scan.SeverityUnknown, true},
		{"scoped-unknown-emitted-when-skip-npm-check", scan.ClassUnknown, true, "@acme/whatever", true, scan.SeverityUnknown, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sev, ok := Severity(tc.class, tc.scoped, tc.pkg, tc.skipNpmCheck)
			if ok != tc.wantKept {
				t.Fatalf("kept = %v, want %v", ok, tc.wantKept)
			}
			if ok && sev != tc.wantSev {
				t.Fatalf("severity = %v, want %v", sev, tc.wantSev)
			}
		})
	}
}

func TestBuildSortsDeterministically(t *testing.T) {
	classified := map[string]scan.PackageClass{
		"@xq9zk7823/design-system": scan.ClassScopeNotClaimed,
		"private-logger":           scan.ClassNotFound,
		"lodash":                   scan.ClassExists,
		"foobar-util":              scan.ClassNotFound,
	}
	evidence := map[string][]scan.Candidate{
		"@xq9zk7823/design-system": {{Name: "@xq9zk7823/design-system", Extractor: scan.ExtractorSyntactic, Confidence: scan.ConfidenceHigh}},
		"private-logger":           {{Name: "private-logger", Extractor: scan.ExtractorSyntactic, Confidence: scan.ConfidenceMedium}},
		"lodash":                   {{Name: "lodash", Extractor: scan.ExtractorSyntactic, Confidence: scan.ConfidenceHigh}},
		"foobar-util":              {{Name: "foobar-util", Extractor: scan.ExtractorHeuristic, Confidence: scan.ConfidenceMedium}},
	}

	out := Build(classified, evidence, false)
	assert.Len(t, out, 4)
	wantOrder := []string{"@xq9zk7823/design-system", "private-logger", "foobar-util", "lodash"}
	for i, name := range wantOrder {
		assert.Equal(t, name, out[i].Name, "position %d", i)
	}
}

func TestBuildExcludesUnknown(t *testing.T) {
	classified := map[string]scan.PackageClass{"mystery-pkg": scan.ClassUnknown}
	evidence := map[string][]scan.Candidate{
		"mystery-pkg": {{Name: "mystery-pkg", Extractor: scan.ExtractorSyntactic, Confidence: scan.ConfidenceLow}},
	}
	out := Build(classified, evidence, false)
	assert.Empty(t, out, "Unknown findings must be excluded when the registry was actually queried")
}

// TestBuildEmitsSkippedCandidatesAsUnknown covers --skip-npm-check's
// documented contract (spec.md §6): "emit all candidates with class
// Unknown," not drop them.
func TestBuildEmitsSkippedCandidatesAsUnknown(t *testing.T) {
	classified := map[string]scan.PackageClass{
		"mystery-pkg":       scan.ClassUnknown,
		"@acme/mystery-pkg": scan.ClassUnknown,
	}
	evidence := map[string][]scan.Candidate{
		"mystery-pkg":       {{Name: "mystery-pkg", Extractor: scan.ExtractorSyntactic, Confidence: scan.ConfidenceLow}},
		"@acme/mystery-pkg": {{Name: "@acme/mystery-pkg", Extractor: scan.ExtractorSyntactic, Confidence: scan.ConfidenceHigh}},
	}
	out := Build(classified, evidence, true)
	if !assert.Len(t, out, 2) {
		return
	}
	for _, f := range out {
		assert.Equal(t, scan.ClassUnknown, f.Class)
		assert.Equal(t, scan.SeverityUnknown, f.Severity)
	}
}

func TestFilterMinConfidence(t *testing.T) {
	in := []scan.Finding{
		{Name: "a", Confidence: scan.ConfidenceLow},
		{Name: "b", Confidence: scan.ConfidenceHigh},
	}
	out := FilterMinConfidence(in, scan.ConfidenceMedium)
	if assert.Len(t, out, 1) {
		assert.Equal(t, "b", out[0].Name)
	}
}

func TestFilterScopedOnly(t *testing.T) {
	in := []scan.Finding{
		{Name: "lodash"},
		{Name: "@acme/auth"},
	}
	out := FilterScopedOnly(in)
	if assert.Len(t, out, 1) {
		assert.Equal(t, "@acme/auth", out[0].Name)
	}
}
