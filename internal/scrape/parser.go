package scrape

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/popcult/boxdtrend/internal/model"
)

// Structural selectors for the popular films listing. The listing is a
// flat <li> sequence; each item carries the film id and target link on a
// lazy-load div.
const (
	selListItem    = "li.poster-container"
	selFilmDiv     = "div.really-lazy-load"
	attrFilmID     = "data-film-id"
	attrTargetLink = "data-target-link"
)

// Selectors for individual film pages.
const (
	selHeadline   = "h1.headline-1.primaryname span.name"
	selJSONLD     = `script[type='application/ld+json']`
	selGenreLinks = "div#tab-genres .text-sluglist p a"
	selFooter     = "p.text-link.text-footer"
)

var (
	runtimeRe  = regexp.MustCompile(`(\d+)\s*mins`)
	tmdbTypeRe = regexp.MustCompile(`themoviedb\.org/([^/]+)/\d+`)
)

// Parser extracts ranked entries and film metadata from site markup.
//
// Design decision: We use goquery rather than walking the node tree by
// hand because the extraction is selector-shaped: the listing and film
// pages are identified by stable class/attribute combinations, and CSS
// selectors keep that mapping declarative and auditable against the
// live site.
type Parser struct {
	// baseURL resolves relative film links ("/film/dune-2021/") to
	// absolute URLs.
	baseURL *url.URL
}

// NewParser creates a Parser that resolves relative links against baseURL.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	return &Parser{baseURL: u}, nil
}

// ParseListing extracts the ranked film entries from one listing page.
//
// Entries are ranked by document order starting at startRank. Items
// whose lazy-load div is missing either attribute are skipped, matching
// the defensive behavior of the transform step: a half-parsed item must
// not claim a rank. The returned slice may be empty; only the Scraper
// decides whether an empty cycle is a ParseError, because later pages of
// a multi-page listing legitimately run out of items.
func (p *Parser) ParseListing(r io.Reader, startRank int) ([]model.Film, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("invalid listing markup: %w", err)}
	}

	films := make([]model.Film, 0)
	rank := startRank

	doc.Find(selListItem).Each(func(_ int, item *goquery.Selection) {
		div := item.Find(selFilmDiv).First()
		if div.Length() == 0 {
			return
		}

		id, okID := div.Attr(attrFilmID)
		slug, okSlug := div.Attr(attrTargetLink)
		if !okID || !okSlug {
			return
		}

		title := NormalizeTitle(item.Find("img").First().AttrOr("alt", ""))
		if title == "" {
			title = NormalizeTitle(model.TitleFromSlug(slug))
		}
		if title == "" {
			// An entry without any title is unusable downstream.
			return
		}

		films = append(films, model.Film{
			Rank:  rank,
			ID:    id,
			Slug:  slug,
			Title: title,
			URL:   p.resolve(slug),
		})
		rank++
	})

	return films, nil
}

// ParseFilmDetail extracts metadata from an individual film page.
// Missing sections leave zero values; only unparseable markup is an error.
func (p *Parser) ParseFilmDetail(r io.Reader, filmID string) (*model.FilmDetail, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("invalid film page markup: %w", err)}
	}

	d := &model.FilmDetail{FilmID: filmID}

	// Title presence doubles as a sanity check that we got a film page
	// at all. Everything else is best-effort.
	if doc.Find(selHeadline).Length() == 0 && doc.Find(selJSONLD).Length() == 0 {
		return nil, &ParseError{Err: fmt.Errorf("film page structure not recognized (id %s)", filmID)}
	}

	p.parseJSONLD(doc, d)

	doc.Find(selGenreLinks).Each(func(_ int, a *goquery.Selection) {
		if g := strings.TrimSpace(a.Text()); g != "" {
			d.Genres = append(d.Genres, g)
		}
	})

	if footer := doc.Find(selFooter).First(); footer.Length() > 0 {
		if m := runtimeRe.FindStringSubmatch(footer.Text()); m != nil {
			// The capture group is all digits, so Atoi cannot fail.
			d.RuntimeMinutes, _ = strconv.Atoi(m[1])
		}
		footer.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href := a.AttrOr("href", "")
			if m := tmdbTypeRe.FindStringSubmatch(href); m != nil {
				d.TMDBType = m[1]
				return false
			}
			return true
		})
	}

	d.HasDescription = doc.Find(`meta[name='description']`).Length() > 0 ||
		doc.Find(`meta[property='og:description']`).Length() > 0

	return d, nil
}

// jsonLD is the subset of the film page's schema.org block we consume.
type jsonLD struct {
	Image           string `json:"image"`
	AggregateRating struct {
		RatingCount int64   `json:"ratingCount"`
		RatingValue float64 `json:"ratingValue"`
	} `json:"aggregateRating"`
}

// parseJSONLD fills rating and poster fields from the page's JSON-LD
// script block. The block is wrapped in CDATA comments that must be
// stripped before decoding.
func (p *Parser) parseJSONLD(doc *goquery.Document, d *model.FilmDetail) {
	raw := strings.TrimSpace(doc.Find(selJSONLD).First().Text())
	if raw == "" {
		return
	}
	raw = strings.ReplaceAll(raw, "/* <![CDATA[ */", "")
	raw = strings.ReplaceAll(raw, "/* ]]> */", "")

	var ld jsonLD
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &ld); err != nil {
		// Malformed structured data is common; treat as absent.
		return
	}

	d.RatingCount = ld.AggregateRating.RatingCount
	d.RatingValue = ld.AggregateRating.RatingValue
	d.PosterURL = ld.Image
}

// resolve turns a site-relative slug into an absolute URL.
func (p *Parser) resolve(slug string) string {
	ref, err := url.Parse(slug)
	if err != nil {
		return ""
	}
	return p.baseURL.ResolveReference(ref).String()
}

// NormalizeTitle trims whitespace and applies NFC normalization so that
// the same film always serializes to the same CSV bytes regardless of
// how the site encoded accented characters that day.
func NormalizeTitle(title string) string {
	return norm.NFC.String(strings.TrimSpace(title))
}
