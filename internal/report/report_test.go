package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/kraklabs/depconfuse/internal/scan"
)

func TestWriteJSONSchema(t *testing.T) {
	r := Build([]scan.TargetReport{
		{
			URL:    "https://example.com",
			Status: scan.StatusOK,
			Findings: []scan.Finding{
				{
					Name:       "@xq9zk7823/design-system",
					Class:      scan.ClassScopeNotClaimed,
					Severity:   scan.SeverityCritical,
					Confidence: scan.ConfidenceHigh,
					Evidence: []scan.EvidenceEntry{
						{Extractor: scan.ExtractorSyntactic, ScriptURL: "https://example.com/app.js", Context: `import x from "@xq9zk7823/design-system"`},
					},
				},
			},
		},
	}, "2026-07-31T00:00:00Z", "11111111-1111-1111-1111-111111111111")

	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"version", "run_id", "scanned_at", "targets"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing top-level key %q", key)
		}
	}
	if decoded["run_id"] != "11111111-1111-1111-1111-111111111111" {
		t.Fatalf("run_id = %v, want the injected UUID", decoded["run_id"])
	}

	targets := decoded["targets"].([]interface{})
	target := targets[0].(map[string]interface{})
	findings := target["findings"].([]interface{})
	finding := findings[0].(map[string]interface{})
	for _, key := range []string{"name", "class", "severity", "confidence", "evidence"} {
		if _, ok := finding[key]; !ok {
			t.Fatalf("missing finding key %q", key)
		}
	}
}

func TestSummary(t *testing.T) {
	r := Build([]scan.TargetReport{
		{URL: "a", Findings: []scan.Finding{{Severity: scan.SeverityCritical}}},
		{URL: "b", Findings: []scan.Finding{{Severity: scan.SeverityHigh}, {Severity: scan.SeverityHigh}}},
	}, "now", "22222222-2222-2222-2222-222222222222")

	got := Summary(r)
	want := "2 targets scanned, 1 critical, 2 high"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
