// Package filter implements the ten-layer (0-9) false-positive filter over
// candidate package names (spec.md §4.2). Each layer is a pure function
// over a name and its match context, returning keep/drop plus a reason;
// the stack itself is data (an ordered slice) so layers can be disabled
// individually in verbose/diagnostic mode without touching the logic.
package filter

import "github.com/kraklabs/depconfuse/internal/scan"

// Verdict is one layer's keep/drop decision.
type Verdict struct {
	Keep   bool
	Reason string // empty when Keep is true, except for an allowlist-bypass keep
}

// Layer is one pure filter stage. ctx carries the candidate's match
// context (the text surrounding it in the script) for layers that need
// it; most layers ignore it.
type Layer struct {
	Name string
	Eval func(name string, ctx string) Verdict
}

// LayerResult records one layer's verdict for a candidate, for testing
// and --verbose diagnostics.
type LayerResult struct {
	Layer   string
	Verdict Verdict
}

// Stack is the ordered, cheapest-first list of filter layers.
type Stack struct {
	layers   []Layer
	disabled map[string]bool
}

// New returns the default ten-layer stack (layers 0-9) in spec order.
func New() *Stack {
	return &Stack{
		layers: []Layer{
			{"well-formed", layerWellFormed},
			{"path-literal", layerPathLiteral},
			{"url", layerURL},
			{"css-selector", layerCSSSelector},
			{"i18n-key", layerI18nKey},
			{"bundler-internal", layerBundlerInternal},
			{"builtin", layerBuiltin},
			{"allowlist-bypass", layerAllowlistBypass},
			{"minified-identifier", layerMinifiedIdentifier},
			{"context-revalidation", layerContextRevalidation},
		},
		disabled: make(map[string]bool),
	}
}

// Disable turns off a layer by name, for --verbose diagnosis (spec.md §9
// "layers can be disabled in verbose mode for diagnosis without altering
// logic").
func (s *Stack) Disable(name string) { s.disabled[name] = true }

// Enable re-enables a previously disabled layer.
func (s *Stack) Enable(name string) { delete(s.disabled, name) }

// Apply runs every enabled layer in order. It stops at the first drop
// (layer 7, allowlist-bypass, short-circuits keep instead) and returns
// the per-layer results alongside the final keep/drop decision.
func (s *Stack) Apply(name, ctx string) (bool, []LayerResult) {
	results := make([]LayerResult, 0, len(s.layers))
	for _, layer := range s.layers {
		if s.disabled[layer.Name] {
			continue
		}
		v := layer.Eval(name, ctx)
		results = append(results, LayerResult{Layer: layer.Name, Verdict: v})

		if layer.Name == "allowlist-bypass" && v.Reason == allowlistBypassReason {
			// Real-package allowlist bypass short-circuits remaining
			// layers (spec.md §4.2 layer 7): still emitted, as Info.
			return true, results
		}
		if !v.Keep {
			return false, results
		}
	}
	return true, results
}

// FilterCandidates drops every candidate that fails the stack, preserving
// order (P1: every surviving candidate is lexically well-formed).
func FilterCandidates(s *Stack, candidates []scan.Candidate) []scan.Candidate {
	out := make([]scan.Candidate, 0, len(candidates))
	for _, c := range candidates {
		keep, _ := s.Apply(c.Name, c.Context)
		if keep {
			out = append(out, c)
		}
	}
	return out
}
