package scrape

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/popcult/boxdtrend/internal/model"
)

// Scraper walks the paginated popular listing and assembles one run's
// ranked film slice. It owns pagination and politeness; the Fetcher and
// Parser do the per-page work.
type Scraper struct {
	fetcher *Fetcher
	parser  *Parser

	// listingURL is the base AJAX listing URL; page N is fetched from
	// listingURL + "page/N/".
	listingURL string

	// pages is the maximum number of listing pages to fetch.
	pages int

	// maxFilms caps the total number of entries per snapshot.
	maxFilms int

	// pageDelay is the politeness delay between listing page fetches.
	pageDelay time.Duration

	// detailWorkers bounds concurrent film-page fetches during
	// enrichment.
	detailWorkers int

	logger *slog.Logger
}

// ScraperOption configures a Scraper.
type ScraperOption func(*Scraper)

// WithPages sets the maximum number of listing pages to fetch.
func WithPages(n int) ScraperOption {
	return func(s *Scraper) {
		if n > 0 {
			s.pages = n
		}
	}
}

// WithMaxFilms caps the total number of entries collected per run.
func WithMaxFilms(n int) ScraperOption {
	return func(s *Scraper) {
		if n > 0 {
			s.maxFilms = n
		}
	}
}

// WithPageDelay sets the delay between listing page fetches.
func WithPageDelay(d time.Duration) ScraperOption {
	return func(s *Scraper) {
		s.pageDelay = d
	}
}

// WithDetailWorkers bounds concurrent detail-page fetches.
func WithDetailWorkers(n int) ScraperOption {
	return func(s *Scraper) {
		if n > 0 {
			s.detailWorkers = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ScraperOption {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// NewScraper creates a Scraper for the given listing URL.
func NewScraper(fetcher *Fetcher, parser *Parser, listingURL string, opts ...ScraperOption) *Scraper {
	s := &Scraper{
		fetcher:       fetcher,
		parser:        parser,
		listingURL:    listingURL,
		pages:         14,
		maxFilms:      1000,
		pageDelay:     2 * time.Second,
		detailWorkers: 10,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// ScrapeListing fetches listing pages until the page limit, the film
// cap, or an empty page is reached, and returns the ranked entries.
//
// An empty page after at least one populated page just means the listing
// ran out; an empty result overall is a *ParseError, because a layout
// change upstream must abort the run before anything is appended.
// The returned page count reports how many pages were actually fetched.
func (s *Scraper) ScrapeListing(ctx context.Context) ([]model.Film, int, error) {
	films := make([]model.Film, 0, s.maxFilms)
	fetched := 0

	for page := 1; page <= s.pages; page++ {
		select {
		case <-ctx.Done():
			return nil, fetched, ctx.Err()
		default:
		}

		pageURL := s.pageURL(page)
		s.logger.Debug("fetching listing page", "page", page, "url", pageURL)

		body, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return nil, fetched, err
		}
		fetched++

		pageFilms, err := s.parser.ParseListing(bytes.NewReader(body), len(films)+1)
		if err != nil {
			return nil, fetched, err
		}

		if len(pageFilms) == 0 {
			s.logger.Debug("empty listing page, stopping pagination", "page", page)
			break
		}

		films = append(films, pageFilms...)
		if len(films) >= s.maxFilms {
			films = films[:s.maxFilms]
			break
		}

		if s.pageDelay > 0 && page < s.pages {
			select {
			case <-ctx.Done():
				return nil, fetched, ctx.Err()
			case <-time.After(s.pageDelay):
			}
		}
	}

	if len(films) == 0 {
		return nil, fetched, &ParseError{
			URL: s.listingURL,
			Err: fmt.Errorf("%w (checked %d page(s))", ErrNoEntries, fetched),
		}
	}

	return films, fetched, nil
}

// EnrichDetails fetches each film's own page and collects metadata.
//
// Individual page failures are logged and skipped: enrichment is
// best-effort decoration on top of the listing, and one unreachable
// film page must not abort the snapshot. The whole enrichment stops
// only on context cancellation.
func (s *Scraper) EnrichDetails(ctx context.Context, films []model.Film) (map[string]*model.FilmDetail, error) {
	details := make([]*model.FilmDetail, len(films))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.detailWorkers)

	for i, film := range films {
		if film.URL == "" {
			continue
		}
		i, film := i, film
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			body, err := s.fetcher.Fetch(ctx, film.URL)
			if err != nil {
				s.logger.Warn("detail fetch failed", "film", film.Title, "url", film.URL, "error", err)
				return nil
			}

			d, err := s.parser.ParseFilmDetail(bytes.NewReader(body), film.ID)
			if err != nil {
				s.logger.Warn("detail parse failed", "film", film.Title, "error", err)
				return nil
			}

			details[i] = d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*model.FilmDetail, len(films))
	for _, d := range details {
		if d != nil {
			out[d.FilmID] = d
		}
	}
	return out, nil
}

// pageURL builds the AJAX URL for a 1-based listing page.
func (s *Scraper) pageURL(page int) string {
	base := s.listingURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return fmt.Sprintf("%spage/%d/", base, page)
}
