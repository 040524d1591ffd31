package lastfm

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// plainText strips markup from a Last.fm bio summary, dropping the
// trailing "Read more on Last.fm" link.
func plainText(summary string) string {
	if strings.TrimSpace(summary) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(summary))
	if err != nil {
		return strings.TrimSpace(summary)
	}

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		if strings.HasPrefix(strings.TrimSpace(s.Text()), "Read more on Last.fm") {
			s.Remove()
		}
	})

	return strings.TrimSpace(doc.Text())
}
