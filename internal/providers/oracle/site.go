package oracle

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// sitePolicy keeps whole documents with inline CSS and drops scripts,
// event handlers and embedded frames.
var sitePolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements(
		"html", "head", "body", "title", "style",
		"header", "footer", "nav", "main", "section", "article", "aside",
		"figure", "figcaption", "button", "label",
	)
	p.AllowAttrs("charset", "name", "content").OnElements("meta")
	p.AllowAttrs("lang").OnElements("html")
	p.AllowAttrs("class", "id", "style").Globally()
	p.AllowAttrs("type", "placeholder", "name", "value").OnElements("input", "button", "textarea")
	p.AllowElements("input", "textarea", "form")
	p.AllowUnsafe(true)
	return p
}()

const doctype = "<!DOCTYPE html>"

// sanitizeSite strips markdown fences the model may add and runs the
// document through the site policy.
func sanitizeSite(raw string) string {
	html := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(html, "```html"); ok {
		html = strings.TrimSuffix(strings.TrimSpace(rest), "```")
	} else if rest, ok := strings.CutPrefix(html, "```"); ok {
		html = strings.TrimSuffix(strings.TrimSpace(rest), "```")
	}

	clean := strings.TrimSpace(sitePolicy.Sanitize(html))
	return doctype + "\n" + clean
}

func siteTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
