package crawler

import (
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mindsgn/snappriceworker/internal/catalog"
)

// Storefront selectors. Pagination markers double as the page counter; the
// site exposes no separate count endpoint.
const (
	resultCardSelector = "div.sg-col-4-of-12"
	titleSelector      = "span.a-size-base-plus.a-color-base.a-text-normal"
	imageSelector      = "img.s-image"
	linkSelector       = "a.a-link-normal.a-text-normal"
	priceSelector      = "span.a-price > span.a-offscreen"
	paginationSelector = ".s-pagination-item"
)

// Extractor turns storefront markup into listing candidates
type Extractor struct {
	baseURL string
}

// NewExtractor creates an extractor resolving relative links against baseURL
func NewExtractor(baseURL string) *Extractor {
	return &Extractor{baseURL: strings.TrimRight(baseURL, "/")}
}

// PageCount counts the pagination markers on the page. Zero markers means
// the brand has no results at all, not a single unpaginated page.
func (e *Extractor) PageCount(doc *goquery.Document) int {
	return doc.Find(paginationSelector).Length()
}

// Listings returns a lazy, single-pass sequence of listing candidates.
// Candidates without a link are omitted; candidates with missing or odd
// price text are passed through for the ingest layer to reject.
func (e *Extractor) Listings(doc *goquery.Document) iter.Seq[catalog.Listing] {
	return func(yield func(catalog.Listing) bool) {
		for _, s := range doc.Find(resultCardSelector).EachIter() {
			listing, ok := e.extract(s)
			if !ok {
				continue
			}
			if !yield(listing) {
				return
			}
		}
	}
}

func (e *Extractor) extract(s *goquery.Selection) (catalog.Listing, bool) {
	link, exists := s.Find(linkSelector).Attr("href")
	link = strings.TrimSpace(link)
	if !exists || link == "" {
		// The link is the natural key; without it the candidate is useless.
		return catalog.Listing{}, false
	}
	if strings.HasPrefix(link, "/") {
		link = e.baseURL + link
	}

	image, _ := s.Find(imageSelector).Attr("src")

	return catalog.Listing{
		Title:    strings.TrimSpace(s.Find(titleSelector).Text()),
		Image:    strings.TrimSpace(image),
		Link:     link,
		RawPrice: strings.TrimSpace(s.Find(priceSelector).Text()),
	}, true
}
