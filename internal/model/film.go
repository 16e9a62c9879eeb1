package model

import "strings"

// Film represents a single ranked entry from the popular films listing.
// Rank is 1-based and reflects the position on the listing at scrape time.
type Film struct {
	// Rank is the 1-based position in the listing for this snapshot.
	Rank int `json:"rank"`

	// ID is the site's numeric film identifier (data-film-id attribute).
	// May be empty if the listing markup omits it.
	ID string `json:"id,omitempty"`

	// Slug is the site-relative path to the film page (e.g. "/film/dune-2021/").
	Slug string `json:"slug,omitempty"`

	// Title is the film title. Entries without a title are dropped
	// during the transform step and never reach the history file.
	Title string `json:"title"`

	// URL is the absolute URL of the film page, derived from the base
	// URL and Slug.
	URL string `json:"url,omitempty"`
}

// TitleFromSlug derives a human-readable title from the film slug.
// Used as a fallback when the listing markup carries no title attribute.
// "/film/the-godfather-part-ii/" becomes "the godfather part ii".
func TitleFromSlug(slug string) string {
	s := strings.Trim(slug, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return strings.ReplaceAll(s, "-", " ")
}

// FilmDetail holds metadata scraped from an individual film page.
// All fields are best-effort: a missing section on the page leaves the
// corresponding field at its zero value.
type FilmDetail struct {
	// FilmID links the detail back to the listing entry.
	FilmID string `json:"film_id"`

	// RatingCount is the number of ratings from the page's JSON-LD block.
	RatingCount int64 `json:"rating_count,omitempty"`

	// RatingValue is the average rating from the JSON-LD block.
	RatingValue float64 `json:"rating_value,omitempty"`

	// Genres lists the film's genres in page order.
	Genres []string `json:"genres,omitempty"`

	// RuntimeMinutes is the runtime parsed from the page footer.
	// Zero when the page does not state a runtime.
	RuntimeMinutes int `json:"runtime_minutes,omitempty"`

	// TMDBType is the TMDB resource kind linked from the footer
	// ("movie" or "tv"). Empty when no TMDB link is present.
	TMDBType string `json:"tmdb_type,omitempty"`

	// HasDescription reports whether the page carries a description
	// meta tag.
	HasDescription bool `json:"has_description"`

	// PosterURL is the poster image URL from the JSON-LD block.
	PosterURL string `json:"poster_url,omitempty"`
}
