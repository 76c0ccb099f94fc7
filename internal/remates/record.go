package remates

import (
	"sort"
	"time"

	"dario.cat/mergo"

	"sjsage522/remateworker/internal/boletin"
	"sjsage522/remateworker/internal/detail"
)

// Date is a day-granularity timestamp that serializes as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	return Date{dateOnly(t)}
}

// MarshalJSON renders the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateFormat) + `"`), nil
}

// UnmarshalJSON parses a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+DateFormat+`"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Record is one assembled auction notice, the union of a listing entry and
// the detail recovered from its document. A record is keyed by its validation
// code and immutable once assembled; consumers receive it by value. Optional
// fields are nil when neither source supplied them and serialize as null.
type Record struct {
	CodigoValidacion  string     `json:"codigo_validacion"`
	TipoBien          string     `json:"tipo_bien"`
	FechaPublicacion  Date       `json:"fecha_publicacion"`
	FechaRemate       *time.Time `json:"fecha_remate"`
	TipoProcedimiento *string    `json:"tipo_procedimiento"`
	RolCausa          *string    `json:"rol_causa"`
	Tribunal          *string    `json:"tribunal"`
	DeudorNombre      *string    `json:"deudor_nombre"`
	DeudorRut         *string    `json:"deudor_rut"`
	Liquidador        *string    `json:"liquidador"`
	Region            *string    `json:"region"`
	Comuna            *string    `json:"comuna"`
	Direccion         *string    `json:"direccion"`
	Descripcion       *string    `json:"descripcion"`
	TipoBienes        *string    `json:"tipo_bienes"`
	ValorMinimo       *int64     `json:"valor_minimo"`
	Comision          *string    `json:"comision"`
	EntePublicador    *string    `json:"ente_publicador"`
	Procedimiento     *string    `json:"procedimiento"`
	FuenteURL         string     `json:"fuente_url"`
}

// Assemble merges one listing entry and the detail parsed from its document
// into a record. Where both sources can supply a value, the document wins and
// the listing fills the gap. The source URL is derived from the validation
// code, never copied from a response.
func Assemble(entry boletin.ListingEntry, tipoBien string, published time.Time, d detail.Detail) (Record, error) {
	rec := Record{
		CodigoValidacion:  entry.CodigoValidacion,
		TipoBien:          tipoBien,
		FechaPublicacion:  NewDate(published),
		FechaRemate:       d.FechaRemate,
		TipoProcedimiento: d.TipoProcedimiento,
		RolCausa:          d.RolCausa,
		Tribunal:          d.Tribunal,
		DeudorNombre:      d.Deudor,
		DeudorRut:         d.DeudorRut,
		Liquidador:        d.Liquidador,
		Region:            d.Region,
		Comuna:            d.Comuna,
		Direccion:         d.Direccion,
		Descripcion:       d.Descripcion,
		TipoBienes:        d.TipoBienes,
		ValorMinimo:       d.ValorMinimo,
		Comision:          d.Comision,
		FuenteURL:         boletin.DocumentURL(entry.CodigoValidacion),
	}

	// Listing-sourced values only land on fields the document left empty.
	overlay := Record{
		TipoProcedimiento: optional(entry.TipoProcedimiento),
		DeudorNombre:      optional(entry.DeudorNombre),
		EntePublicador:    optional(entry.EntePublicador),
		Procedimiento:     optional(entry.Procedimiento),
	}
	if err := mergo.Merge(&rec, overlay); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// optional lifts a listing string into a record field, mapping empty to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SortNewestFirst orders records by publication date, then validation code,
// descending. Ordering is total, so output files are stable between runs.
func SortNewestFirst(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.FechaPublicacion.Equal(b.FechaPublicacion.Time) {
			return a.FechaPublicacion.After(b.FechaPublicacion.Time)
		}
		return a.CodigoValidacion > b.CodigoValidacion
	})
}
