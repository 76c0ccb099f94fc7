// Package report renders scraped records for people: a console summary with
// category counters, and a self-contained static HTML report.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"sjsage522/remateworker/helpers"
	"sjsage522/remateworker/internal/remates"
)

// CategoryCount is one category tally.
type CategoryCount struct {
	Name  string
	Count int
}

// CategoryStats tallies records per asset kind and per asset-category text,
// most frequent first.
func CategoryStats(records []remates.Record) (tipoBien, tipoBienes []CategoryCount) {
	bienCounts := make(map[string]int)
	bienesCounts := make(map[string]int)
	for _, rec := range records {
		if rec.TipoBien != "" {
			bienCounts[rec.TipoBien]++
		}
		if rec.TipoBienes != nil && *rec.TipoBienes != "" {
			bienesCounts[*rec.TipoBienes]++
		}
	}
	return sortCounts(bienCounts), sortCounts(bienesCounts)
}

func sortCounts(counts map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, CategoryCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// WriteSummary renders the records as a table, newest first. A total >= 0
// marks the summary as a subset of a larger run ("N de M remates").
func WriteSummary(w io.Writer, title string, records []remates.Record, total int) {
	fmt.Fprintln(w)
	if len(records) == 0 {
		if total >= 0 {
			fmt.Fprintf(w, "%s: 0 de %d remates\n", title, total)
		} else {
			fmt.Fprintf(w, "%s: no hay remates para mostrar\n", title)
		}
		return
	}

	if total >= 0 {
		fmt.Fprintf(w, "%s: %d de %d remates\n", title, len(records), total)
	} else {
		fmt.Fprintf(w, "%s: %d remates\n", title, len(records))
	}

	sorted := make([]remates.Record, len(records))
	copy(sorted, records)
	remates.SortNewestFirst(sorted)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Publicacion", "Remate", "Tipo", "Region / Comuna", "Descripcion", "Codigo", "Documento"})
	for _, rec := range sorted {
		t.AppendRow(table.Row{
			rec.FechaPublicacion.Format(remates.DateFormat),
			remateDateText(&rec),
			rec.TipoBien,
			locationText(&rec),
			helpers.Shorten(descriptionText(&rec), 60),
			rec.CodigoValidacion,
			rec.FuenteURL,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// WriteCategorySummary lists category tallies, optionally capped at limit.
func WriteCategorySummary(w io.Writer, label string, counts []CategoryCount, limit int) {
	fmt.Fprintln(w)
	if len(counts) == 0 {
		fmt.Fprintf(w, "%s: sin datos\n", label)
		return
	}

	fmt.Fprintf(w, "%s:\n", label)
	shown := counts
	if limit > 0 && len(counts) > limit {
		shown = counts[:limit]
	}
	for _, c := range shown {
		name := c.Name
		if name == "" {
			name = "(sin valor)"
		}
		fmt.Fprintf(w, "- %s: %d\n", name, c.Count)
	}
	if limit > 0 && len(counts) > limit {
		fmt.Fprintf(w, "... y %d categorias mas\n", len(counts)-limit)
	}
}

func descriptionText(rec *remates.Record) string {
	switch {
	case rec.Descripcion != nil && *rec.Descripcion != "":
		return *rec.Descripcion
	case rec.TipoBienes != nil && *rec.TipoBienes != "":
		return *rec.TipoBienes
	default:
		return "(sin descripcion disponible)"
	}
}

func remateDateText(rec *remates.Record) string {
	if rec.FechaRemate == nil {
		return "sin fecha remate"
	}
	return rec.FechaRemate.Format("2006-01-02 15:04")
}

func locationText(rec *remates.Record) string {
	region, comuna := "Sin region", "Sin comuna"
	if rec.Region != nil && *rec.Region != "" {
		region = *rec.Region
	}
	if rec.Comuna != nil && *rec.Comuna != "" {
		comuna = *rec.Comuna
	}
	return region + " / " + comuna
}
