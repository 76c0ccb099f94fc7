package remates

import (
	"context"
	"iter"
	"time"

	"sjsage522/remateworker/internal/boletin"
	"sjsage522/remateworker/internal/detail"
	"sjsage522/remateworker/internal/pdftext"
	"sjsage522/remateworker/logger"
	"sjsage522/remateworker/pkg/errors"
)

// Source is one listing endpoint and the asset kind its records carry.
type Source struct {
	Slug     string
	Endpoint string
	TipoBien string
}

// Sources returns the bulletin's two remates listings in crawl order.
func Sources() []Source {
	return []Source{
		{Slug: "muebles", Endpoint: boletin.EndpointMuebles, TipoBien: "mueble"},
		{Slug: "inmuebles", Endpoint: boletin.EndpointInmuebles, TipoBien: "inmueble"},
	}
}

// Bulletin is the authenticated bulletin surface the scraper drives.
type Bulletin interface {
	Pages(ctx context.Context, req boletin.PageRequest) iter.Seq2[*boletin.ListingPage, error]
	DownloadDocument(ctx context.Context, codigoValidacion string) ([]byte, error)
}

var _ Bulletin = (*boletin.Session)(nil)

// Stats counts what one run saw, skipped and produced.
type Stats struct {
	Pages        int
	Entries      int
	Duplicates   int
	NoCode       int
	BadDates     int
	TooOld       int
	TooNew       int
	DocumentErrs int
	EarlyStops   int
	LimitHit     bool
}

// Scraper runs one sequential crawl over the remates listings. One request is
// in flight at a time; a failing document skips that entry, a failing listing
// fetch aborts the run.
type Scraper struct {
	bulletin Bulletin
	window   Window
	pageSize int
	limit    int
	stop     StopPolicy
	extract  func([]byte) (string, error)
}

// NewScraper wires a scraper over an authenticated session. A limit of 0
// means unlimited; a nil policy crawls every listing to its end.
func NewScraper(b Bulletin, window Window, pageSize, limit int, stop StopPolicy) *Scraper {
	if stop == nil {
		stop = NeverStop
	}
	return &Scraper{
		bulletin: b,
		window:   window,
		pageSize: pageSize,
		limit:    limit,
		stop:     stop,
		extract:  pdftext.Extract,
	}
}

// Run crawls both sources and returns the assembled records in crawl order.
// Validation codes are de-duplicated across sources for the whole run; the
// first occurrence wins.
func (s *Scraper) Run(ctx context.Context) ([]Record, *Stats, error) {
	stats := &Stats{}
	seen := make(map[string]struct{})
	var records []Record

	for _, src := range Sources() {
		var err error
		records, err = s.crawlSource(ctx, src, seen, records, stats)
		if err != nil {
			return nil, stats, err
		}
		if stats.LimitHit {
			break
		}
	}
	return records, stats, nil
}

// crawlSource pages through one listing endpoint until the listing ends, the
// stop policy fires, or the record limit is reached.
func (s *Scraper) crawlSource(ctx context.Context, src Source, seen map[string]struct{}, records []Record, stats *Stats) ([]Record, error) {
	log := logger.ForSource(src.Slug)
	req := boletin.PageRequest{Endpoint: src.Endpoint, Length: s.pageSize}

	for page, err := range s.bulletin.Pages(ctx, req) {
		if err != nil {
			return records, err
		}
		stats.Pages++

		for _, entry := range page.Data {
			stats.Entries++
			rec, ok := s.processEntry(ctx, log, src, entry, seen, stats)
			if !ok {
				continue
			}
			records = append(records, rec)
			if s.limit > 0 && len(records) >= s.limit {
				stats.LimitHit = true
				log.Info().Int("limit", s.limit).Msg("record limit reached, stopping crawl")
				return records, nil
			}
		}

		if s.stop(page.Data, s.window) {
			stats.EarlyStops++
			log.Debug().Int("page_entries", len(page.Data)).Msg("page older than window, stopping source")
			break
		}
	}
	return records, nil
}

// processEntry runs the per-entry pipeline: de-duplicate, bound by the
// window, download the document, extract and parse its text, assemble. Every
// failure here skips the entry only.
func (s *Scraper) processEntry(ctx context.Context, log *logger.Logger, src Source, entry boletin.ListingEntry, seen map[string]struct{}, stats *Stats) (Record, bool) {
	code := entry.CodigoValidacion
	if code == "" {
		stats.NoCode++
		log.Warn().Msg("listing entry without validation code")
		return Record{}, false
	}
	if _, dup := seen[code]; dup {
		stats.Duplicates++
		return Record{}, false
	}
	seen[code] = struct{}{}

	published, err := time.Parse(DateFormat, entry.FchPublicacion)
	if err != nil {
		stats.BadDates++
		perr := errors.NewDateParse(src.Slug, entry.FchPublicacion, err)
		log.Warn().Err(perr).Str("codigo", code).Msg("skipping entry with unparsable publication date")
		return Record{}, false
	}
	if s.window.Before(published) {
		stats.TooOld++
		return Record{}, false
	}
	if s.window.After(published) {
		stats.TooNew++
		return Record{}, false
	}

	pdf, err := s.bulletin.DownloadDocument(ctx, code)
	if err != nil {
		stats.DocumentErrs++
		log.Warn().Err(err).Str("codigo", code).Msg("skipping entry, document download failed")
		return Record{}, false
	}
	text, err := s.extract(pdf)
	if err != nil {
		stats.DocumentErrs++
		log.Warn().Err(err).Str("codigo", code).Msg("skipping entry, document unreadable")
		return Record{}, false
	}

	rec, err := Assemble(entry, src.TipoBien, published, detail.Parse(code, text))
	if err != nil {
		log.Error().Err(err).Str("codigo", code).Msg("skipping entry, record assembly failed")
		return Record{}, false
	}
	return rec, true
}
