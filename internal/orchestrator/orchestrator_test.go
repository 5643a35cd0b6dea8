package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kraklabs/depconfuse/internal/extract"
	"github.com/kraklabs/depconfuse/internal/filter"
	"github.com/kraklabs/depconfuse/internal/registry"
	"github.com/kraklabs/depconfuse/internal/scan"
	"github.com/kraklabs/depconfuse/internal/sourcemap"
)

// newTestOrchestrator builds an Orchestrator whose registry client AND
// source-map fetcher both talk to a local httptest server instead of the
// real npm registry / real script origin, so the classify stage can be
// exercised end to end (spec.md §8 scenarios) without touching the
// network. It returns the server's base URL so callers can build script
// URLs under it — the .map probe in sourcemap.Fetcher.Fetch otherwise
// reaches out to the script's real origin.
func newTestOrchestrator(t *testing.T, registryHandler http.HandlerFunc) (*Orchestrator, string) {
	t.Helper()
	srv := httptest.NewServer(registryHandler)
	t.Cleanup(srv.Close)

	reg := registry.NewWithBaseURL(1000, 5*time.Second, srv.URL)

	return &Orchestrator{
		maps:    sourcemap.NewFetcher(srv.Client()),
		extract: extract.NewEngine(),
		filters: filter.New(),
		reg:     reg,
		cfg:     scan.DefaultConfig(),
	}, srv.URL
}

func scriptSetOf(scripts ...scan.CapturedScript) *scan.ScriptSet {
	ss := scan.NewScriptSet()
	for _, s := range scripts {
		ss.Add(s)
	}
	return ss
}

// Scenario 1: scoped, unclaimed scope.
func TestScenarioScopedUnclaimed(t *testing.T) {
	o, base := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound) // scope probe 404s too
	})
	s := scan.NewCapturedScript(base+"/app.js",
		[]byte(`import x from "@xq9zk7823/design-system";`),
		"application/javascript", scan.OriginMainDocument, "", 0)

	findings := o.classify(context.Background(), scriptSetOf(s))
	f := mustFind(t, findings, "@xq9zk7823/design-system")
	if f.Class != scan.ClassScopeNotClaimed || f.Severity != scan.SeverityCritical {
		t.Fatalf("got %+v", f)
	}
}

// Scenario 2: unscoped, missing, internal-sounding.
func TestScenarioUnscopedMissingInternal(t *testing.T) {
	o, base := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	s := scan.NewCapturedScript(base+"/app.js",
		[]byte(`require("private-logger");`),
		"application/javascript", scan.OriginMainDocument, "", 0)

	findings := o.classify(context.Background(), scriptSetOf(s))
	f := mustFind(t, findings, "private-logger")
	if f.Class != scan.ClassNotFound || f.Severity != scan.SeverityHigh {
		t.Fatalf("got %+v", f)
	}
}

// Scenario 3: unscoped, missing, generic vs. neutral control.
func TestScenarioUnscopedMissingGenericVsNeutral(t *testing.T) {
	o, base := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	s := scan.NewCapturedScript(base+"/app.js",
		[]byte(`require("company-internal-utils"); require("foobar-util");`),
		"application/javascript", scan.OriginMainDocument, "", 0)

	findings := o.classify(context.Background(), scriptSetOf(s))
	internalF := mustFind(t, findings, "company-internal-utils")
	if internalF.Severity != scan.SeverityHigh {
		t.Fatalf("company-internal-utils severity = %v, want High", internalF.Severity)
	}
	neutralF := mustFind(t, findings, "foobar-util")
	if neutralF.Severity != scan.SeverityMedium {
		t.Fatalf("foobar-util severity = %v, want Medium", neutralF.Severity)
	}
}

// Scenario 4: public package.
func TestScenarioPublicPackage(t *testing.T) {
	o, base := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s := scan.NewCapturedScript(base+"/app.js",
		[]byte(`import _ from "lodash";`),
		"application/javascript", scan.OriginMainDocument, "", 0)

	findings := o.classify(context.Background(), scriptSetOf(s))
	f := mustFind(t, findings, "lodash")
	if f.Class != scan.ClassExists || f.Severity != scan.SeverityInfo {
		t.Fatalf("got %+v", f)
	}
}

// Scenario 6: deobfuscation end to end through classify.
func TestScenarioDeobfuscation(t *testing.T) {
	o, base := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	s := scan.NewCapturedScript(base+"/app.js",
		[]byte(`require(atob("QHhxOXprNzgyMy9hdXRoLXNkaw=="));`),
		"application/javascript", scan.OriginMainDocument, "", 0)

	findings := o.classify(context.Background(), scriptSetOf(s))
	f := mustFind(t, findings, "@xq9zk7823/auth-sdk")
	if len(f.Evidence) == 0 || f.Evidence[0].Extractor != scan.ExtractorDeobfuscate {
		t.Fatalf("expected deobfuscation evidence, got %+v", f.Evidence)
	}
}

// TestScenarioSkipNpmCheckEmitsUnknown covers --skip-npm-check's
// documented contract (spec.md §6): every surviving candidate is emitted
// with class Unknown instead of being classified (and, per the ordinary
// Unknown-exclusion rule, dropped).
func TestScenarioSkipNpmCheckEmitsUnknown(t *testing.T) {
	o, base := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".map") {
			w.WriteHeader(http.StatusNotFound) // source-map probe, not a registry query
			return
		}
		t.Fatal("registry must not be queried when SkipNpmCheck is set")
	})
	o.cfg.SkipNpmCheck = true

	s := scan.NewCapturedScript(base+"/app.js",
		[]byte(`import _ from "lodash"; require("@acme/widgets");`),
		"application/javascript", scan.OriginMainDocument, "", 0)

	findings := o.classify(context.Background(), scriptSetOf(s))
	for _, name := range []string{"lodash", "@acme/widgets"} {
		f := mustFind(t, findings, name)
		if f.Class != scan.ClassUnknown || f.Severity != scan.SeverityUnknown {
			t.Fatalf("%s: got %+v, want class=Unknown severity=Unknown", name, f)
		}
	}
}

// TestClassifyBoundedFanOutMergesAllScripts exercises classify's
// errgroup-bounded per-script fan-out (spec.md §5) across more scripts
// than cfg.ExtractWorkers, verifying every script's candidates still
// make it into the merged result under concurrent access.
func TestClassifyBoundedFanOutMergesAllScripts(t *testing.T) {
	o, base := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	o.cfg.ExtractWorkers = 2

	var scripts []scan.CapturedScript
	for i := 0; i < 10; i++ {
		url := base + "/chunk" + string(rune('a'+i)) + ".js"
		body := []byte(`require("pkg-` + string(rune('a'+i)) + `");`)
		scripts = append(scripts, scan.NewCapturedScript(url, body, "application/javascript", scan.OriginChunkProbe, "", 0))
	}

	findings := o.classify(context.Background(), scriptSetOf(scripts...))
	if len(findings) != 10 {
		t.Fatalf("got %d findings, want 10 (one per script)", len(findings))
	}
}

func mustFind(t *testing.T, findings []scan.Finding, name string) scan.Finding {
	t.Helper()
	for _, f := range findings {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("finding %q not present in %+v", name, findings)
	return scan.Finding{}
}
