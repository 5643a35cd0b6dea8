package extract

import (
	"context"
	"testing"

	"github.com/kraklabs/depconfuse/internal/scan"
)

func namesOf(candidates []scan.Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Name
	}
	return out
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func TestSyntacticExtractsImportStatement(t *testing.T) {
	e := NewSyntacticExtractor()
	body := []byte(`import x from "@xq9zk7823/design-system";`)
	candidates := e.Extract(context.Background(), "app.js", body)
	if !contains(namesOf(candidates), "@xq9zk7823/design-system") {
		t.Fatalf("got %+v", candidates)
	}
}

func TestSyntacticExtractsRequireCall(t *testing.T) {
	e := NewSyntacticExtractor()
	body := []byte(`const logger = require("private-logger");`)
	candidates := e.Extract(context.Background(), "app.js", body)
	if !contains(namesOf(candidates), "private-logger") {
		t.Fatalf("got %+v", candidates)
	}
	for _, c := range candidates {
		if c.Confidence != scan.ConfidenceHigh {
			t.Errorf("confidence = %v, want high for a clean parse", c.Confidence)
		}
	}
}

func TestSyntacticTemplateLiteralNoInterpolation(t *testing.T) {
	e := NewSyntacticExtractor()
	body := []byte("const x = require(`lodash`);")
	candidates := e.Extract(context.Background(), "app.js", body)
	if !contains(namesOf(candidates), "lodash") {
		t.Fatalf("got %+v", candidates)
	}
}

func TestSyntacticTemplateLiteralWithInterpolationUsesPrefix(t *testing.T) {
	e := NewSyntacticExtractor()
	body := []byte("const x = require(`@acme/${name}`);")
	candidates := e.Extract(context.Background(), "app.js", body)
	if !contains(namesOf(candidates), "@acme/") {
		t.Fatalf("expected literal prefix '@acme/', got %+v", candidates)
	}
}

func TestSyntacticFallsBackToRegexOnUnparsableInput(t *testing.T) {
	// Deliberately malformed input that should trip the heavy-error-ratio
	// fallback; the regex pass still finds the require() call.
	body := []byte(`@@@@@ ??? require("foobar-util") }}}}{{{{ ///`)
	e := NewSyntacticExtractor()
	candidates := e.Extract(context.Background(), "app.js", body)
	if !contains(namesOf(candidates), "foobar-util") {
		t.Fatalf("got %+v", candidates)
	}
}
