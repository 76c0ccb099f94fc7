package remates

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sjsage522/remateworker/internal/boletin"
)

func entriesOn(dates ...string) []boletin.ListingEntry {
	entries := make([]boletin.ListingEntry, len(dates))
	for i, d := range dates {
		entries[i] = boletin.ListingEntry{CodigoValidacion: "C" + d, FchPublicacion: d}
	}
	return entries
}

func TestStopWhenPageTooOld(t *testing.T) {
	start := day(2025, 9, 1)
	w := Window{Start: &start}

	// Every entry older than the window start stops the source
	assert.True(t, StopWhenPageTooOld(entriesOn("2025-08-30", "2025-08-01"), w))

	// A single in-window entry keeps the crawl going
	assert.False(t, StopWhenPageTooOld(entriesOn("2025-08-30", "2025-09-02"), w))

	// An entry on the boundary is in-window
	assert.False(t, StopWhenPageTooOld(entriesOn("2025-08-30", "2025-09-01"), w))

	// An unparsable date never counts as too old
	assert.False(t, StopWhenPageTooOld(entriesOn("2025-08-30", "mañana"), w))

	// Empty pages and unbounded windows never stop
	assert.False(t, StopWhenPageTooOld(nil, w))
	assert.False(t, StopWhenPageTooOld(entriesOn("1990-01-01"), Window{}))
}

func TestNeverStop(t *testing.T) {
	start := day(2025, 9, 1)
	assert.False(t, NeverStop(entriesOn("1990-01-01"), Window{Start: &start}))
}
