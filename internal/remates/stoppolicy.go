package remates

import (
	"time"

	"sjsage522/remateworker/internal/boletin"
)

// StopPolicy decides after each fetched page whether the crawl of that
// listing endpoint should stop. It sees the page's raw entries and the run's
// window; returning true ends that endpoint's crawl before the next request.
type StopPolicy func(entries []boletin.ListingEntry, w Window) bool

// StopWhenPageTooOld stops once a non-empty page holds only entries published
// before the window start. The bulletin serves listings newest-first, so such
// a page implies no later page can still be in the window. That ordering is
// an observed property of the remote system, not a guarantee; swap in
// NeverStop to crawl a listing to its end regardless.
func StopWhenPageTooOld(entries []boletin.ListingEntry, w Window) bool {
	if len(entries) == 0 || w.Start == nil {
		return false
	}
	for _, entry := range entries {
		published, err := time.Parse(DateFormat, entry.FchPublicacion)
		if err != nil || !w.Before(published) {
			return false
		}
	}
	return true
}

// NeverStop pages through the whole listing.
func NeverStop([]boletin.ListingEntry, Window) bool {
	return false
}
