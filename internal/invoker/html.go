package invoker

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const snippetLimit = 512

// htmlTitle returns the <title> of an HTML body, or "" when the body does
// not look like HTML.
func htmlTitle(contentType string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if !strings.Contains(strings.ToLower(contentType), "html") && !bytes.HasPrefix(trimmed, []byte("<")) {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	return strings.Join(strings.Fields(title), " ")
}

func bodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > snippetLimit {
		body = body[:snippetLimit]
	}
	return strings.TrimSpace(string(body))
}
