package report

import (
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sjsage522/remateworker/internal/remates"
)

// HTMLOptions shape the report header: its title, generation time and the
// keyword filter the run used, if any.
type HTMLOptions struct {
	Title       string
	GeneratedAt time.Time
	Keywords    []string
	MatchFields []string
}

// rowView is the template-friendly projection of a Record. Descripcion is
// pre-escaped so notice line breaks can render as <br>.
type rowView struct {
	Search            string
	FechaPublicacion  string
	FechaRemate       string
	TipoBien          string
	TipoProcedimiento string
	DeudorNombre      string
	Liquidador        string
	Region            string
	Comuna            string
	Direccion         string
	TipoBienes        string
	Descripcion       template.HTML
	ValorMinimo       string
	FuenteURL         string
}

type htmlView struct {
	Title          string
	GeneratedLabel string
	KeywordText    string
	FieldsText     string
	TipoBien       []CategoryCount
	TipoBienes     []CategoryCount
	TipoBienesMore int
	Rows           []rowView
	Total          int
}

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 2rem; color: #1f2933; background-color: #f8fafc; }
    h1 { margin-bottom: 0.25rem; }
    .meta { margin: 0.25rem 0; font-size: 0.95rem; color: #52606d; }
    .summary { margin: 1.5rem 0; display: grid; gap: 1rem; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr)); }
    .summary article { background: #fff; border: 1px solid #d2d6dc; border-radius: 6px; padding: 0.75rem 1rem; box-shadow: 0 1px 2px rgba(15, 23, 42, 0.12); }
    .summary h2 { margin: 0 0 0.5rem 0; font-size: 1rem; color: #0f172a; }
    .summary ul { margin: 0; padding-left: 1.1rem; color: #364152; }
    .filters { margin: 1rem 0; }
    input[type='search'] { padding: 0.5rem; width: 320px; }
    table { width: 100%; border-collapse: collapse; background: white; }
    thead { background: #0f172a; color: white; }
    th, td { padding: 0.5rem; border: 1px solid #cbd2d9; vertical-align: top; }
    tbody tr:nth-child(even) { background: #f1f5f9; }
    tbody tr[hidden] { display: none; }
    .count { margin-bottom: 0.5rem; font-size: 0.9rem; color: #364152; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <p class="meta">Generado el {{.GeneratedLabel}}</p>
  <p class="meta">Palabras clave: {{.KeywordText}} | Campos: {{.FieldsText}}</p>
{{- if or .TipoBien .TipoBienes}}
  <section class="summary">
{{- if .TipoBien}}
    <article>
      <h2>Tipos de bien</h2>
      <ul>
{{- range .TipoBien}}
        <li>{{.Name}}: {{.Count}}</li>
{{- end}}
      </ul>
    </article>
{{- end}}
{{- if .TipoBienes}}
    <article>
      <h2>Categorias de bienes</h2>
      <ul>
{{- range .TipoBienes}}
        <li>{{.Name}}: {{.Count}}</li>
{{- end}}
{{- if .TipoBienesMore}}
        <li>... y {{.TipoBienesMore}} categorias mas</li>
{{- end}}
      </ul>
    </article>
{{- end}}
  </section>
{{- end}}
  <div class="filters">
    <label for="text-filter">Filtrar en esta pagina:</label>
    <input id="text-filter" type="search" placeholder="Escribe para filtrar...">
  </div>
  <p class="count">Mostrando <span id="visible-count">{{.Total}}</span> de {{.Total}} remates.</p>
  <div class="table-wrapper">
    <table>
      <thead>
        <tr>
          <th>Publicacion</th>
          <th>Fecha remate</th>
          <th>Tipo bien</th>
          <th>Procedimiento</th>
          <th>Deudor</th>
          <th>Liquidador</th>
          <th>Region</th>
          <th>Comuna</th>
          <th>Direccion</th>
          <th>Tipo bienes</th>
          <th>Descripcion</th>
          <th>Valor minimo</th>
          <th>Documento</th>
        </tr>
      </thead>
      <tbody>
{{- range .Rows}}
        <tr data-search="{{.Search}}"><td>{{.FechaPublicacion}}</td><td>{{.FechaRemate}}</td><td>{{.TipoBien}}</td><td>{{.TipoProcedimiento}}</td><td>{{.DeudorNombre}}</td><td>{{.Liquidador}}</td><td>{{.Region}}</td><td>{{.Comuna}}</td><td>{{.Direccion}}</td><td>{{.TipoBienes}}</td><td>{{.Descripcion}}</td><td>{{.ValorMinimo}}</td><td><a href="{{.FuenteURL}}" target="_blank" rel="noopener noreferrer">PDF</a></td></tr>
{{- end}}
      </tbody>
    </table>
  </div>
  <script>
    const filterInput = document.querySelector('#text-filter');
    const rows = Array.from(document.querySelectorAll('tbody tr'));
    const visibleCount = document.querySelector('#visible-count');
    filterInput.addEventListener('input', () => {
      const needle = filterInput.value.trim().toLowerCase();
      let visible = 0;
      rows.forEach((row) => {
        const text = row.dataset.search || '';
        const shouldShow = !needle || text.includes(needle);
        row.hidden = !shouldShow;
        if (shouldShow) visible += 1;
      });
      visibleCount.textContent = visible;
    });
  </script>
</body>
</html>
`))

// WriteHTML renders the records as a self-contained static report: metadata
// header, category summary cards and a table filterable in the browser over
// a precomputed normalized search string per row.
func WriteHTML(path string, records []remates.Record, opts HTMLOptions) error {
	sorted := make([]remates.Record, len(records))
	copy(sorted, records)
	remates.SortNewestFirst(sorted)

	tipoBien, tipoBienes := CategoryStats(sorted)
	view := htmlView{
		Title:          opts.Title,
		GeneratedLabel: opts.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"),
		KeywordText:    keywordText(opts.Keywords),
		FieldsText:     strings.Join(opts.MatchFields, ", "),
		TipoBien:       displayCounts(tipoBien, 0),
		TipoBienes:     displayCounts(tipoBienes, 10),
		Total:          len(sorted),
	}
	if len(tipoBienes) > 10 {
		view.TipoBienesMore = len(tipoBienes) - 10
	}

	view.Rows = make([]rowView, 0, len(sorted))
	for i := range sorted {
		view.Rows = append(view.Rows, recordRow(&sorted[i]))
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := reportTmpl.Execute(f, view); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func keywordText(keywords []string) string {
	if len(keywords) == 0 {
		return "(sin filtro de palabras clave)"
	}
	return strings.Join(keywords, ", ")
}

// displayCounts substitutes a placeholder for empty category names and caps
// the list at limit entries (0 keeps all).
func displayCounts(counts []CategoryCount, limit int) []CategoryCount {
	shown := counts
	if limit > 0 && len(counts) > limit {
		shown = counts[:limit]
	}
	out := make([]CategoryCount, len(shown))
	for i, c := range shown {
		if c.Name == "" {
			c.Name = "(sin valor)"
		}
		out[i] = c
	}
	return out
}

// recordRow projects one record into its table row. The row's search text
// covers the fields a reader would filter on, normalized like the keyword
// filter so browser filtering and --keywords agree.
func recordRow(rec *remates.Record) rowView {
	descripcion := descriptionText(rec)
	search := remates.NormalizeQuery(strings.Join([]string{
		descripcion,
		orDash(rec.TipoBienes),
		rec.TipoBien,
		orDash(rec.TipoProcedimiento),
		orDash(rec.DeudorNombre),
		orDash(rec.Region),
		orDash(rec.Comuna),
		orDash(rec.Direccion),
	}, " "))

	escaped := template.HTMLEscapeString(descripcion)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")

	return rowView{
		Search:            search,
		FechaPublicacion:  rec.FechaPublicacion.Format(remates.DateFormat),
		FechaRemate:       remateCell(rec),
		TipoBien:          rec.TipoBien,
		TipoProcedimiento: orDash(rec.TipoProcedimiento),
		DeudorNombre:      orDash(rec.DeudorNombre),
		Liquidador:        orDash(rec.Liquidador),
		Region:            orDash(rec.Region),
		Comuna:            orDash(rec.Comuna),
		Direccion:         orDash(rec.Direccion),
		TipoBienes:        orDash(rec.TipoBienes),
		Descripcion:       template.HTML(escaped),
		ValorMinimo:       pesosCell(rec.ValorMinimo),
		FuenteURL:         rec.FuenteURL,
	}
}

func orDash(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}
	return *p
}

func remateCell(rec *remates.Record) string {
	if rec.FechaRemate == nil {
		return "-"
	}
	return rec.FechaRemate.Format("2006-01-02 15:04")
}

// pesosCell formats a peso amount with dot thousands separators, "$1.234.567".
func pesosCell(v *int64) string {
	if v == nil {
		return "-"
	}
	digits := strconv.FormatInt(*v, 10)
	var b strings.Builder
	b.WriteByte('$')
	for i, c := range digits {
		if i > 0 && c != '-' && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return b.String()
}
