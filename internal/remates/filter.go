package remates

import (
	"strconv"
	"strings"
	"time"

	"sjsage522/remateworker/helpers"
	"sjsage522/remateworker/internal/pdftext"
)

// MatchMode selects how multiple keywords combine.
type MatchMode string

const (
	// MatchAny accepts a record when any keyword matches.
	MatchAny MatchMode = "any"
	// MatchAll accepts a record only when every keyword matches.
	MatchAll MatchMode = "all"
)

// NormalizeQuery folds text for matching the same way for keywords and
// record fields: NFKD to ASCII, lowercased, whitespace collapsed.
func NormalizeQuery(s string) string {
	return helpers.CollapseSpaces(strings.ToLower(pdftext.ASCIIFold(s)))
}

// matchFields maps dataset field names to the record text they expose to the
// keyword filter.
var matchFields = map[string]func(*Record) string{
	"codigo_validacion":  func(r *Record) string { return r.CodigoValidacion },
	"tipo_bien":          func(r *Record) string { return r.TipoBien },
	"fecha_publicacion":  func(r *Record) string { return r.FechaPublicacion.Format(DateFormat) },
	"fecha_remate":       func(r *Record) string { return timeText(r.FechaRemate) },
	"tipo_procedimiento": func(r *Record) string { return strText(r.TipoProcedimiento) },
	"rol_causa":          func(r *Record) string { return strText(r.RolCausa) },
	"tribunal":           func(r *Record) string { return strText(r.Tribunal) },
	"deudor_nombre":      func(r *Record) string { return strText(r.DeudorNombre) },
	"deudor_rut":         func(r *Record) string { return strText(r.DeudorRut) },
	"liquidador":         func(r *Record) string { return strText(r.Liquidador) },
	"region":             func(r *Record) string { return strText(r.Region) },
	"comuna":             func(r *Record) string { return strText(r.Comuna) },
	"direccion":          func(r *Record) string { return strText(r.Direccion) },
	"descripcion":        func(r *Record) string { return strText(r.Descripcion) },
	"tipo_bienes":        func(r *Record) string { return strText(r.TipoBienes) },
	"valor_minimo":       func(r *Record) string { return intText(r.ValorMinimo) },
	"comision":           func(r *Record) string { return strText(r.Comision) },
	"ente_publicador":    func(r *Record) string { return strText(r.EntePublicador) },
	"procedimiento":      func(r *Record) string { return strText(r.Procedimiento) },
	"fuente_url":         func(r *Record) string { return r.FuenteURL },
}

// DefaultMatchFields are the fields keyword filtering reads unless the user
// names others.
func DefaultMatchFields() []string {
	return []string{"descripcion", "tipo_bienes", "tipo_bien", "tipo_procedimiento"}
}

// ResolveMatchFields splits the requested field names into known and unknown
// ones. When none are known the filter falls back to the description.
func ResolveMatchFields(requested []string) (valid, invalid []string) {
	for _, name := range requested {
		if _, ok := matchFields[name]; ok {
			valid = append(valid, name)
		} else {
			invalid = append(invalid, name)
		}
	}
	if len(valid) == 0 {
		valid = []string{"descripcion"}
	}
	return valid, invalid
}

// Filter returns the records whose named fields match the keywords under the
// given mode. Keywords and fields are compared in normalized form; records
// whose fields yield no text never match.
func Filter(records []Record, keywords, fields []string, mode MatchMode) []Record {
	var normalized []string
	for _, kw := range keywords {
		if n := NormalizeQuery(kw); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) == 0 {
		return nil
	}

	var filtered []Record
	for i := range records {
		haystack := NormalizeQuery(FieldText(&records[i], fields))
		if haystack == "" {
			continue
		}
		if matches(haystack, normalized, mode) {
			filtered = append(filtered, records[i])
		}
	}
	return filtered
}

// FieldText concatenates the named fields of a record, space separated.
// Unknown names contribute nothing.
func FieldText(r *Record, fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		if get, ok := matchFields[name]; ok {
			parts = append(parts, get(r))
		}
	}
	return strings.Join(parts, " ")
}

func matches(haystack string, keywords []string, mode MatchMode) bool {
	if mode == MatchAll {
		for _, kw := range keywords {
			if !strings.Contains(haystack, kw) {
				return false
			}
		}
		return true
	}
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

func strText(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func timeText(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func intText(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}
