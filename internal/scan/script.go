package scan

import (
	"crypto/sha256"
	"encoding/hex"
)

// CapturedScript is a single JavaScript resource observed for one target.
// Within a target, (SourceURL, BodyHash) is unique — duplicate captures are
// dropped before extraction runs (spec.md §3 invariant).
type CapturedScript struct {
	SourceURL   string
	Body        []byte
	BodyHash    string
	ContentType string
	Origin      DiscoveryOrigin
	ReferrerURL string // empty if this script has no referring script
	Depth       int    // 0 for initial captures, +1 per chunk hop
}

// NewCapturedScript computes the body hash used for the dedup invariant.
func NewCapturedScript(sourceURL string, body []byte, contentType string, origin DiscoveryOrigin, referrerURL string, depth int) CapturedScript {
	sum := sha256.Sum256(body)
	return CapturedScript{
		SourceURL:   sourceURL,
		Body:        body,
		BodyHash:    hex.EncodeToString(sum[:]),
		ContentType: contentType,
		Origin:      origin,
		ReferrerURL: referrerURL,
		Depth:       depth,
	}
}

// dedupKey identifies a script for the (source URL, body hash) invariant.
type dedupKey struct {
	url  string
	hash string
}

// ScriptSet deduplicates CapturedScripts as they arrive from capture,
// chunk discovery, and probing, in insertion order.
type ScriptSet struct {
	seen    map[dedupKey]struct{}
	scripts []CapturedScript
}

// NewScriptSet returns an empty, ready-to-use ScriptSet.
func NewScriptSet() *ScriptSet {
	return &ScriptSet{seen: make(map[dedupKey]struct{})}
}

// Add inserts s unless a script with the same (URL, body hash) already
// exists. Returns true if s was newly added.
func (ss *ScriptSet) Add(s CapturedScript) bool {
	key := dedupKey{url: s.SourceURL, hash: s.BodyHash}
	if _, ok := ss.seen[key]; ok {
		return false
	}
	ss.seen[key] = struct{}{}
	ss.scripts = append(ss.scripts, s)
	return true
}

// HasURL reports whether url has already been captured, regardless of body.
func (ss *ScriptSet) HasURL(url string) bool {
	for _, s := range ss.scripts {
		if s.SourceURL == url {
			return true
		}
	}
	return false
}

// Len returns the number of distinct scripts captured so far.
func (ss *ScriptSet) Len() int { return len(ss.scripts) }

// All returns the captured scripts in discovery order.
func (ss *ScriptSet) All() []CapturedScript { return ss.scripts }
