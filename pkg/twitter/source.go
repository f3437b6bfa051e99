package twitter

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Source is the client application a tweet was posted from.
type Source struct {
	Name string
	URL  string
}

// ParseSource extracts the client name and link from a tweet's `source`
// field, which is an HTML anchor such as
// `<a href="https://mobile.twitter.com" rel="nofollow">Twitter Web App</a>`.
// Plain text (older tweets used "web") is returned as the name.
func ParseSource(raw string) Source {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}
	}
	if !strings.Contains(raw, "<") {
		return Source{Name: raw}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return Source{Name: raw}
	}
	anchor := doc.Find("a").First()
	if anchor.Length() == 0 {
		return Source{Name: strings.TrimSpace(doc.Text())}
	}
	href, _ := anchor.Attr("href")
	return Source{
		Name: strings.TrimSpace(anchor.Text()),
		URL:  strings.TrimSpace(href),
	}
}
