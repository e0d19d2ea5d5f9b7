package goquery_extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/reality-watch/internal/entity"
	"github.com/user/reality-watch/internal/repository"
)

// CSS selectors of the region listing page.
const (
	cardSelector  = "div.inzeraty"
	timeSelector  = "span.velikost10"
	titleSelector = "h2.nadpis"
	priceSelector = "div.cena"
	linkSelector  = "a"
)

// Extractor reads listing cards out of a region page.
type Extractor struct{}

// NewExtractor returns an extractor for the site's listing markup.
func NewExtractor() repository.ExtractorRepository {
	return Extractor{}
}

// Extract returns one field-group per card in page order. Elements missing
// from a card are left nil.
func (Extractor) Extract(content string) ([]entity.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse page: %w", repository.ErrExtraction, err)
	}

	var cards []entity.RawListing
	doc.Find(cardSelector).Each(func(_ int, s *goquery.Selection) {
		card := entity.RawListing{
			RawTime: text(s.Find(timeSelector)),
			Title:   text(s.Find(titleSelector)),
			Price:   text(s.Find(priceSelector)),
		}
		if href, ok := s.Find(linkSelector).First().Attr("href"); ok {
			card.Href = &href
		}
		cards = append(cards, card)
	})
	return cards, nil
}

// text returns the trimmed text of the first matched element, or nil when
// nothing matched.
func text(s *goquery.Selection) *string {
	if s.Length() == 0 {
		return nil
	}
	t := strings.TrimSpace(s.First().Text())
	return &t
}
