package extract

import (
	"regexp"

	"github.com/kraklabs/depconfuse/internal/scan"
)

// reImportFallback matches import/require/export-from string arguments
// without requiring a full parse, mirroring the teacher's regex-based
// Parser (pkg/ingestion/parser.go) used when AST parsing fails.
var reImportFallback = regexp.MustCompile(
	`(?:\brequire\s*\(\s*|\bimport\s*\(\s*|\bfrom\s+|\bimport\s+["'])["']([^"'\s]+)["']`,
)

// regexImportFallback is E1's confidence:medium path, used when
// tree-sitter fails to produce a usable parse.
func regexImportFallback(scriptURL string, body []byte) []scan.Candidate {
	matches := reImportFallback.FindAllSubmatchIndex(body, -1)
	out := make([]scan.Candidate, 0, len(matches))
	for _, m := range matches {
		name := string(body[m[2]:m[3]])
		if name == "" {
			continue
		}
		lo, hi := m[0]-snippetRadius, m[1]+snippetRadius
		if lo < 0 {
			lo = 0
		}
		if hi > len(body) {
			hi = len(body)
		}
		out = append(out, scan.Candidate{
			Name:       name,
			Extractor:  scan.ExtractorSyntactic,
			ScriptURL:  scriptURL,
			Context:    string(body[lo:hi]),
			Confidence: scan.ConfidenceMedium,
		})
	}
	return out
}
