package capture

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kraklabs/depconfuse/internal/scan"
)

// InlineScripts extracts the bodies of <script> tags with no src
// attribute from the rendered page HTML. These never produce a network
// response, so browser capture's response-interception path (C6) never
// sees them; goquery's DOM traversal recovers them as an additional
// main-document CapturedScript per tag.
func InlineScripts(pageURL, html string) []scan.CapturedScript {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var out []scan.CapturedScript
	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		if _, hasSrc := sel.Attr("src"); hasSrc {
			return
		}
		if typ, ok := sel.Attr("type"); ok {
			switch strings.ToLower(strings.TrimSpace(typ)) {
			case "", "text/javascript", "application/javascript", "module":
			default:
				return // application/json, importmap, etc. are not executable script
			}
		}
		body := strings.TrimSpace(sel.Text())
		if body == "" {
			return
		}
		url := inlineScriptURL(pageURL, i)
		out = append(out, scan.NewCapturedScript(url, []byte(body), "application/javascript", scan.OriginMainDocument, pageURL, 0))
	})
	return out
}

func inlineScriptURL(pageURL string, index int) string {
	return pageURL + "#inline-script-" + strconv.Itoa(index)
}
