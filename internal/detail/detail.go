// Package detail recovers the structured fields of an auction notice from its
// normalized text. Parsing never fails: a field the notice does not state, or
// states in a shape no rule matches, simply stays nil.
package detail

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Detail holds the fields recovered from a single notice document.
type Detail struct {
	CodigoValidacion  string
	FechaRemate       *time.Time
	TipoProcedimiento *string
	RolCausa          *string
	Tribunal          *string
	Deudor            *string
	DeudorRut         *string
	Liquidador        *string
	Region            *string
	Comuna            *string
	Direccion         *string
	Descripcion       *string
	TipoBienes        *string
	ValorMinimo       *int64
	Comision          *string
	RawText           string
}

// assignFunc stores one matched value on the detail record.
type assignFunc func(*Detail, string)

// fieldRule binds a labeled line to the field it fills. The first match in
// the document wins.
type fieldRule struct {
	re     *regexp.Regexp
	assign assignFunc
}

// sectionRule bounds a free-text block between a start label line and the
// next label line (or the end of the document).
type sectionRule struct {
	re     *regexp.Regexp
	assign assignFunc
}

// labeledField matches "<label>: value", case-insensitively. The value may
// continue on the following line when the notice wraps it.
func labeledField(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `:\s*(.+)`)
}

// boundedSection captures everything between the start label's line and the
// line the end label opens, or the end of the document.
func boundedSection(startLabel, endLabel string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)` + regexp.QuoteMeta(startLabel) +
		`\n(.+?)(?:\n` + regexp.QuoteMeta(endLabel) + `|$)`)
}

var fieldRules = []fieldRule{
	{labeledField("Tipo Procedimiento"), func(d *Detail, v string) { d.TipoProcedimiento = &v }},
	{labeledField("Rol Causa"), func(d *Detail, v string) { d.RolCausa = &v }},
	{labeledField("Tribunal"), func(d *Detail, v string) { d.Tribunal = &v }},
	{labeledField("Deudor"), func(d *Detail, v string) { d.Deudor = &v }},
	{labeledField("Deudor Rut"), func(d *Detail, v string) { d.DeudorRut = &v }},
	{labeledField("Liquidador"), func(d *Detail, v string) { d.Liquidador = &v }},
	{labeledField("Direccion"), func(d *Detail, v string) { d.Direccion = &v }},
	{labeledField("Comision"), func(d *Detail, v string) { d.Comision = &v }},
}

var sectionRules = []sectionRule{
	{boundedSection("Detalle", "Tipo Bienes"), func(d *Detail, v string) { d.Descripcion = &v }},
	{boundedSection("Tipo Bienes", "Valor Minimo"), func(d *Detail, v string) { d.TipoBienes = &v }},
}

var (
	fechaRemateRe  = labeledField("Fecha del Remate")
	regionComunaRe = regexp.MustCompile(`(?i)Region:\s*(.+?)\s+Comuna:\s*(.+)`)
	regionRe       = labeledField("Region")
	comunaRe       = labeledField("Comuna")
	valorMinimoRe  = regexp.MustCompile(`(?i)Valor Minimo \(pesos\):\s*([0-9.\s]*)`)

	nonDigitsRe     = regexp.MustCompile(`[^0-9]`)
	trailingLabelRe = regexp.MustCompile(`\n[A-Z ]+?:$`)
)

// fechaRemateLayouts are tried in order against the notice's auction date.
var fechaRemateLayouts = []string{
	"02/01/2006 15:04",
	"02-01-2006 15:04",
	"02/01/2006",
}

// Parse extracts the notice fields from normalized document text.
func Parse(codigoValidacion, text string) Detail {
	d := Detail{CodigoValidacion: codigoValidacion, RawText: text}

	if v := search(fechaRemateRe, text); v != nil {
		d.FechaRemate = parseFechaRemate(*v)
	}

	for _, rule := range fieldRules {
		if v := search(rule.re, text); v != nil {
			rule.assign(&d, *v)
		}
	}

	d.Region, d.Comuna = regionComuna(text)

	for _, rule := range sectionRules {
		if v := section(rule.re, text); v != nil {
			rule.assign(&d, *v)
		}
	}

	d.ValorMinimo = valorMinimo(text)

	return d
}

// search returns the first trimmed capture of re in text, or nil.
func search(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[1])
	return &v
}

// regionComuna resolves both fields from the usual single-line form, falling
// back to independent labeled lines when the combined form is absent.
func regionComuna(text string) (*string, *string) {
	if m := regionComunaRe.FindStringSubmatch(text); m != nil {
		region := strings.TrimSpace(m[1])
		comuna := strings.TrimSpace(m[2])
		return &region, &comuna
	}
	return search(regionRe, text), search(comunaRe, text)
}

// section applies a bounded-section rule and strips a trailing label line
// that leaked into the capture.
func section(re *regexp.Regexp, text string) *string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	body := strings.TrimSpace(m[1])
	body = trailingLabelRe.ReplaceAllString(body, "")
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	return &body
}

// parseFechaRemate tries the known notice date shapes in order.
func parseFechaRemate(value string) *time.Time {
	for _, layout := range fechaRemateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// valorMinimo reads the minimum price in pesos, tolerating thousands dots and
// stray spacing. Absent or digit-free values stay nil, never zero.
func valorMinimo(text string) *int64 {
	m := valorMinimoRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	digits := nonDigitsRe.ReplaceAllString(m[1], "")
	if digits == "" {
		return nil
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
