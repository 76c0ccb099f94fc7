// Package worker runs one full extraction: crawl the bulletin listings into
// records, report them to the console, apply the keyword filter, persist the
// dataset and hand the persisted records to the publisher.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"sjsage522/remateworker/helpers"
	"sjsage522/remateworker/internal/remates"
	"sjsage522/remateworker/services/publisher"
	"sjsage522/remateworker/services/report"
	"sjsage522/remateworker/services/storage"
)

// Scraper produces the run's records.
type Scraper interface {
	Run(ctx context.Context) ([]remates.Record, *remates.Stats, error)
}

var _ Scraper = (*remates.Scraper)(nil)

// Options shape what happens to the records after the crawl.
type Options struct {
	Keywords     []string
	MatchFields  []string
	MatchMode    remates.MatchMode
	OnlyMatching bool

	OutputPath string
	HTMLPath   string

	// Out is the console destination; nil means stdout.
	Out io.Writer
}

// Result is what one run produced.
type Result struct {
	Records   []remates.Record
	Matches   []remates.Record
	Persisted int
	Stats     *remates.Stats
}

// Worker handles the scraping, reporting and publishing process
type Worker struct {
	scraper   Scraper
	publisher publisher.Publisher
	logger    helpers.LoggerInterface
	opts      Options
}

// NewWorker creates a new worker. The publisher may be nil when no sink is
// configured.
func NewWorker(scraper Scraper, pub publisher.Publisher, logger helpers.LoggerInterface, opts Options) *Worker {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if len(opts.MatchFields) == 0 {
		opts.MatchFields = remates.DefaultMatchFields()
	}
	if opts.MatchMode == "" {
		opts.MatchMode = remates.MatchAny
	}
	return &Worker{
		scraper:   scraper,
		publisher: pub,
		logger:    logger,
		opts:      opts,
	}
}

// Run executes one crawl and fans the records out to its consumers. A crawl
// error aborts the run; per-record publish failures only log.
func (w *Worker) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	records, stats, err := w.scraper.Run(ctx)
	if err != nil {
		w.logger.LogError("boletin", err)
		return nil, err
	}
	remates.SortNewestFirst(records)

	report.WriteSummary(w.opts.Out, "Remates obtenidos en el periodo", records, -1)
	tipoBien, tipoBienes := report.CategoryStats(records)
	report.WriteCategorySummary(w.opts.Out, "Tipos de bien", tipoBien, 0)
	report.WriteCategorySummary(w.opts.Out, "Categorias de bienes (top 10)", tipoBienes, 10)

	matchFields, invalid := remates.ResolveMatchFields(w.opts.MatchFields)
	if len(invalid) > 0 {
		w.logger.LogInfo("Los siguientes campos no existen y se ignoraran: %s", strings.Join(invalid, ", "))
	}

	var matches []remates.Record
	if len(w.opts.Keywords) > 0 {
		matches = remates.Filter(records, w.opts.Keywords, matchFields, w.opts.MatchMode)
		title := fmt.Sprintf("Coincidencias para (%s) en campos [%s]",
			strings.Join(w.opts.Keywords, ", "), strings.Join(matchFields, ", "))
		report.WriteSummary(w.opts.Out, title, matches, len(records))
		if len(matches) > 0 {
			matchedBien, matchedBienes := report.CategoryStats(matches)
			report.WriteCategorySummary(w.opts.Out, "Tipos de bien (coincidencias)", matchedBien, 0)
			report.WriteCategorySummary(w.opts.Out, "Categorias de bienes (coincidencias, top 10)", matchedBienes, 10)
		}
	}

	persist := records
	if w.opts.OnlyMatching {
		if len(w.opts.Keywords) == 0 {
			w.logger.LogInfo("--only-matching requiere utilizar --keywords; se guardan todos los remates")
		} else {
			persist = matches
		}
	}

	if err := storage.WriteDataset(w.opts.OutputPath, persist); err != nil {
		w.logger.LogError("storage", err)
		return nil, err
	}
	fmt.Fprintf(w.opts.Out, "Se guardaron %d remates en %s\n", len(persist), w.opts.OutputPath)

	w.publish(persist)

	if w.opts.HTMLPath != "" {
		if err := w.writeHTML(persist, records, matchFields); err != nil {
			w.logger.LogError("report", err)
			return nil, err
		}
		fmt.Fprintf(w.opts.Out, "Se genero el informe HTML en %s\n", w.opts.HTMLPath)
	}

	if os.Getenv("REMATES_ENVIRONMENT") != "production" {
		w.logger.LogInfo("Tiempo de ejecucion: %s", time.Since(start))
	}

	return &Result{
		Records:   records,
		Matches:   matches,
		Persisted: len(persist),
		Stats:     stats,
	}, nil
}

// publish hands each persisted record to the sink, keyed by asset kind, and
// trims the streams afterwards.
func (w *Worker) publish(records []remates.Record) {
	if w.publisher == nil {
		return
	}

	published := 0
	for i := range records {
		rec := &records[i]
		data, err := json.Marshal(rec)
		if err != nil {
			w.logger.LogError(rec.CodigoValidacion, err)
			continue
		}
		if err := w.publisher.Publish(rec.TipoBien, data); err != nil {
			w.logger.LogError(rec.CodigoValidacion, err)
			continue
		}
		published++
	}

	if err := w.publisher.TrimStreams(); err != nil {
		w.logger.LogError("StreamTrimming", err)
	}
	if published > 0 {
		w.logger.LogInfo("Se publicaron %d remates", published)
	}
}

// writeHTML renders the report over the same records the console showed:
// everything, unless the run persisted matches only.
func (w *Worker) writeHTML(persist, records []remates.Record, matchFields []string) error {
	htmlRecords := records
	if w.opts.OnlyMatching && len(w.opts.Keywords) > 0 {
		htmlRecords = persist
	}
	return report.WriteHTML(w.opts.HTMLPath, htmlRecords, report.HTMLOptions{
		Title:       fmt.Sprintf("Remates boletin concursal (%d)", len(htmlRecords)),
		GeneratedAt: time.Now(),
		Keywords:    w.opts.Keywords,
		MatchFields: matchFields,
	})
}
