package scan

import "testing"

func TestNewTargetNormalizesHost(t *testing.T) {
	cfg := DefaultConfig()
	target, err := NewTarget("HTTPS://WWW.Example.com/path", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Host != "example.com" {
		t.Errorf("host = %q, want example.com", target.Host)
	}
}

func TestNewTargetRejectsNonHTTPScheme(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := NewTarget("ftp://example.com", cfg); err == nil {
		t.Fatal("expected error for non-http(s) scheme")
	}
}

func TestNewTargetRejectsRelativeURL(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := NewTarget("/just/a/path", cfg); err == nil {
		t.Fatal("expected error for relative URL")
	}
}

func TestGroupByHostPreservesFirstSeenOrder(t *testing.T) {
	cfg := DefaultConfig()
	a1, _ := NewTarget("https://a.com/1", cfg)
	b1, _ := NewTarget("https://b.com/1", cfg)
	a2, _ := NewTarget("https://a.com/2", cfg)

	groups := GroupByHost([]Target{a1, b1, a2})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Host != "a.com" || len(groups[0].Targets) != 2 {
		t.Fatalf("group 0 = %+v", groups[0])
	}
	if groups[1].Host != "b.com" || len(groups[1].Targets) != 1 {
		t.Fatalf("group 1 = %+v", groups[1])
	}
}

func TestScriptSetDedupesByURLAndHash(t *testing.T) {
	ss := NewScriptSet()
	s1 := NewCapturedScript("https://x.com/a.js", []byte("body"), "application/javascript", OriginMainDocument, "", 0)
	s2 := NewCapturedScript("https://x.com/a.js", []byte("body"), "application/javascript", OriginMainDocument, "", 0)
	s3 := NewCapturedScript("https://x.com/a.js", []byte("different"), "application/javascript", OriginMainDocument, "", 0)

	if !ss.Add(s1) {
		t.Fatal("expected first add to succeed")
	}
	if ss.Add(s2) {
		t.Fatal("expected duplicate (same URL+hash) to be rejected")
	}
	if !ss.Add(s3) {
		t.Fatal("expected different body hash at same URL to be added")
	}
	if ss.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ss.Len())
	}
}

func TestMergeCandidatesKeepsHighestConfidence(t *testing.T) {
	low := Candidate{Name: "lodash", Extractor: ExtractorHeuristic, Confidence: ConfidenceLow}
	high := Candidate{Name: "lodash", Extractor: ExtractorSyntactic, Confidence: ConfidenceHigh}

	merged := MergeCandidates([]Candidate{low}, []Candidate{high})
	if len(merged) != 1 {
		t.Fatalf("got %d candidates, want 1", len(merged))
	}
	if merged[0].Confidence != ConfidenceHigh {
		t.Errorf("confidence = %v, want high", merged[0].Confidence)
	}
}

func TestEvidenceAccumulatesAllContributors(t *testing.T) {
	a := Candidate{Name: "lodash", Extractor: ExtractorHeuristic, Confidence: ConfidenceLow}
	b := Candidate{Name: "lodash", Extractor: ExtractorSyntactic, Confidence: ConfidenceHigh}

	ev := Evidence([]Candidate{a}, []Candidate{b})
	if len(ev["lodash"]) != 2 {
		t.Fatalf("got %d entries, want 2", len(ev["lodash"]))
	}
}
