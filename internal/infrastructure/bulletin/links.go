package bulletin

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var yearText = regexp.MustCompile(`^\d{4}$`)

const (
	latestPhrase  = "último boletim"
	bulletinWord  = "boletim"
	documentMatch = ".pdf"
)

// SelectLink picks the bulletin href from an index page. In order of preference:
// the link whose text is only a year (largest year wins), a link mentioning the
// latest bulletin, then any bulletin link pointing at a PDF.
func SelectLink(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLinkNotFound, err)
	}

	type link struct {
		text string
		href string
	}
	var links []link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links = append(links, link{
			text: strings.Join(strings.Fields(s.Text()), " "),
			href: href,
		})
	})

	best, bestYear := "", -1
	for _, l := range links {
		if !yearText.MatchString(l.text) {
			continue
		}
		year, err := strconv.Atoi(l.text)
		if err != nil {
			continue
		}
		if year > bestYear {
			best, bestYear = l.href, year
		}
	}
	if bestYear >= 0 {
		return best, nil
	}

	for _, l := range links {
		if strings.Contains(strings.ToLower(l.text), latestPhrase) {
			return l.href, nil
		}
	}

	for _, l := range links {
		if strings.Contains(strings.ToLower(l.text), bulletinWord) &&
			strings.Contains(strings.ToLower(l.href), documentMatch) {
			return l.href, nil
		}
	}

	return "", ErrLinkNotFound
}
