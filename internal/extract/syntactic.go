// Package extract implements the five parallel extraction methods of
// spec.md §4.3. Each extractor takes a script (plus optional source map)
// and returns scan.Candidate values tagged with its own provenance; all
// five run concurrently per script and their outputs are unioned by
// scan.MergeCandidates.
package extract

import (
	"context"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/kraklabs/depconfuse/internal/scan"
)

// SyntacticExtractor is E1: parses the script into an AST (tree-sitter)
// and emits the string argument of every import declaration/expression,
// require(...) call, and re-export form. Adapted from the teacher's
// TreeSitterParser (pkg/ingestion/parser_treesitter.go,
// parser_javascript.go), repurposed from function/call extraction to
// import-string extraction.
type SyntacticExtractor struct {
	pool sync.Pool
	once sync.Once
}

// NewSyntacticExtractor returns a ready-to-use E1 extractor. A sync.Pool
// of tree-sitter parsers is used because *sitter.Parser is not
// goroutine-safe, mirroring the teacher's language-parser pools.
func NewSyntacticExtractor() *SyntacticExtractor {
	return &SyntacticExtractor{}
}

func (e *SyntacticExtractor) initPool() {
	e.once.Do(func() {
		e.pool.New = func() any {
			p := sitter.NewParser()
			p.SetLanguage(javascript.GetLanguage())
			return p
		}
	})
}

// Extract implements the extract.Extractor capability.
func (e *SyntacticExtractor) Extract(ctx context.Context, scriptURL string, body []byte) []scan.Candidate {
	e.initPool()

	parser := e.pool.Get().(*sitter.Parser)
	defer e.pool.Put(parser)

	tree, err := parser.ParseCtx(ctx, nil, body)
	if err != nil || tree == nil {
		return regexImportFallback(scriptURL, body)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() && countParseErrors(root) > len(body)/200 {
		// Heavily malformed parse: prefer the regex fallback rather than
		// trust a tree that is mostly error nodes.
		return regexImportFallback(scriptURL, body)
	}

	var out []scan.Candidate
	walkImports(root, body, scriptURL, &out)
	return out
}

func countParseErrors(n *sitter.Node) int {
	count := 0
	if n.IsError() || n.IsMissing() {
		count++
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		count += countParseErrors(n.Child(i))
	}
	return count
}

// walkImports recursively scans the AST for import/require/re-export
// forms, emitting a high-confidence Candidate for each literal string
// argument.
func walkImports(node *sitter.Node, src []byte, scriptURL string, out *[]scan.Candidate) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "import_statement", "export_statement":
		if src64 := node.ChildByFieldName("source"); src64 != nil {
			emitStringLiteral(src64, src, scriptURL, out)
		}
	case "call_expression":
		fn := node.ChildByFieldName("function")
		if fn != nil {
			name := string(src[fn.StartByte():fn.EndByte()])
			if name == "require" || name == "import" {
				args := node.ChildByFieldName("arguments")
				if args != nil && args.NamedChildCount() > 0 {
					emitStringLiteral(args.NamedChild(0), src, scriptURL, out)
				}
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkImports(node.Child(i), src, scriptURL, out)
	}
}

// emitStringLiteral turns a string/template-literal AST node into a
// Candidate when it is (or reduces to) a plain literal.
func emitStringLiteral(n *sitter.Node, src []byte, scriptURL string, out *[]scan.Candidate) {
	lit, ok := literalStringValue(n, src)
	if !ok || lit == "" {
		return
	}
	*out = append(*out, scan.Candidate{
		Name:       lit,
		Extractor:  scan.ExtractorSyntactic,
		ScriptURL:  scriptURL,
		Context:    snippet(src, n),
		Confidence: scan.ConfidenceHigh,
	})
}

// literalStringValue extracts a literal string value from a string_literal
// or template_string node. Template literals with no interpolation are
// treated as plain literals; interpolated templates contribute their
// literal prefix up to the first interpolation (spec.md §4.3, E1).
func literalStringValue(n *sitter.Node, src []byte) (string, bool) {
	switch n.Type() {
	case "string":
		raw := string(src[n.StartByte():n.EndByte()])
		return unquote(raw), true
	case "template_string":
		var prefix []byte
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			switch child.Type() {
			case "`":
				continue
			case "template_substitution":
				return string(prefix), len(prefix) > 0
			default:
				prefix = append(prefix, src[child.StartByte():child.EndByte()]...)
			}
		}
		return string(prefix), true
	default:
		return "", false
	}
}

func unquote(raw string) string {
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return raw[1 : len(raw)-1]
		}
	}
	return raw
}

const snippetRadius = 40

// snippet returns a short surrounding-text window for a node, used as a
// Candidate's match context for filter layer 9 and for evidence display.
func snippet(src []byte, n *sitter.Node) string {
	start := int(n.StartByte())
	end := int(n.EndByte())
	lo := start - snippetRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + snippetRadius
	if hi > len(src) {
		hi = len(src)
	}
	return string(src[lo:hi])
}
