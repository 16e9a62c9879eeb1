package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/popcult/boxdtrend/internal/model"
)

// listingPage builds listing markup with the given film titles.
func listingPage(titles ...string) string {
	var b strings.Builder
	b.WriteString("<ul>")
	for i, title := range titles {
		slug := strings.ReplaceAll(strings.ToLower(title), " ", "-")
		fmt.Fprintf(&b, `<li class="poster-container">
			<div class="really-lazy-load" data-film-id="%d" data-target-link="/film/%s/">
				<img alt="%s">
			</div></li>`, i+1000, slug, title)
	}
	b.WriteString("</ul>")
	return b.String()
}

// newTestScraper wires a Scraper against a httptest server that serves
// the given body per listing page path ("/popular/page/1/" etc.).
func newTestScraper(t *testing.T, pages map[string]string, opts ...ScraperOption) (*Scraper, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	fetcher := NewFetcher(srv.Client(), WithRetry(1, 0))
	parser, err := NewParser(srv.URL)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	opts = append([]ScraperOption{WithPageDelay(0)}, opts...)
	return NewScraper(fetcher, parser, srv.URL+"/popular/", opts...), srv
}

// TestScrapeListing tests pagination, capping, and the empty-listing error.
func TestScrapeListing(t *testing.T) {
	t.Parallel()

	t.Run("collects entries across pages with continuous ranks", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestScraper(t, map[string]string{
			"/popular/page/1/": listingPage("Film A", "Film B"),
			"/popular/page/2/": listingPage("Film C"),
			"/popular/page/3/": listingPage(),
		}, WithPages(5))

		films, pages, err := s.ScrapeListing(context.Background())
		if err != nil {
			t.Fatalf("scrape failed: %v", err)
		}

		if len(films) != 3 {
			t.Fatalf("expected 3 films, got %d", len(films))
		}
		for i, want := range []string{"Film A", "Film B", "Film C"} {
			if films[i].Title != want || films[i].Rank != i+1 {
				t.Errorf("film %d: got %q rank %d, want %q rank %d",
					i, films[i].Title, films[i].Rank, want, i+1)
			}
		}
		// Page 3 is empty, so pagination stops there.
		if pages != 3 {
			t.Errorf("expected 3 pages fetched, got %d", pages)
		}
	})

	t.Run("caps at maxFilms", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestScraper(t, map[string]string{
			"/popular/page/1/": listingPage("A", "B", "C", "D"),
		}, WithPages(1), WithMaxFilms(2))

		films, _, err := s.ScrapeListing(context.Background())
		if err != nil {
			t.Fatalf("scrape failed: %v", err)
		}
		if len(films) != 2 {
			t.Errorf("expected 2 films, got %d", len(films))
		}
	})

	t.Run("zero entries overall is a ParseError", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestScraper(t, map[string]string{
			"/popular/page/1/": "<html><body>redesigned layout</body></html>",
		}, WithPages(3))

		_, _, err := s.ScrapeListing(context.Background())
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected *ParseError, got %T: %v", err, err)
		}
		if !errors.Is(err, ErrNoEntries) {
			t.Errorf("expected ErrNoEntries in chain, got %v", err)
		}
	})

	t.Run("fetch failure surfaces as FetchError", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestScraper(t, map[string]string{}, WithPages(1))

		_, _, err := s.ScrapeListing(context.Background())
		var ferr *FetchError
		if !errors.As(err, &ferr) {
			t.Fatalf("expected *FetchError, got %T: %v", err, err)
		}
	})
}

// TestEnrichDetails tests concurrent detail enrichment.
func TestEnrichDetails(t *testing.T) {
	t.Parallel()

	t.Run("collects details and tolerates failures", func(t *testing.T) {
		t.Parallel()

		s, srv := newTestScraper(t, map[string]string{
			"/film/film-a/": filmPageHTML,
		}, WithDetailWorkers(2))

		details, err := s.EnrichDetails(context.Background(), []model.Film{
			{Rank: 1, ID: "101", Title: "Film A", URL: srv.URL + "/film/film-a/"},
			{Rank: 2, ID: "102", Title: "Film B", URL: srv.URL + "/film/missing/"},
		})
		if err != nil {
			t.Fatalf("enrich failed: %v", err)
		}

		if len(details) != 1 {
			t.Fatalf("expected 1 detail, got %d", len(details))
		}
		if d := details["101"]; d == nil || d.RatingCount != 1234 {
			t.Errorf("unexpected detail for 101: %+v", d)
		}
	})
}
