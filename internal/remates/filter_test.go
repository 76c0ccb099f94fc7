package remates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "camion nunoa", NormalizeQuery("  Camión\n ÑUÑOA "))
	assert.Equal(t, "", NormalizeQuery("   "))
}

func TestResolveMatchFields(t *testing.T) {
	valid, invalid := ResolveMatchFields([]string{"descripcion", "precio", "region"})
	assert.Equal(t, []string{"descripcion", "region"}, valid)
	assert.Equal(t, []string{"precio"}, invalid)

	// No known field falls back to the description
	valid, invalid = ResolveMatchFields([]string{"precio"})
	assert.Equal(t, []string{"descripcion"}, valid)
	assert.Equal(t, []string{"precio"}, invalid)
}

func TestFilter(t *testing.T) {
	records := []Record{
		{CodigoValidacion: "A", TipoBien: "mueble", Descripcion: sp("Remate de camión tolva")},
		{CodigoValidacion: "B", TipoBien: "inmueble", Descripcion: sp("Casa en Ñuñoa con patio")},
		{CodigoValidacion: "C", TipoBien: "mueble"},
	}

	// Accent- and case-insensitive match against the description
	got := Filter(records, []string{"CAMION"}, []string{"descripcion"}, MatchAny)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "A", got[0].CodigoValidacion)
	}

	// Any mode takes either keyword
	got = Filter(records, []string{"camion", "nunoa"}, []string{"descripcion"}, MatchAny)
	assert.Len(t, got, 2)

	// All mode needs every keyword in the combined fields
	got = Filter(records, []string{"casa", "patio"}, []string{"descripcion"}, MatchAll)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "B", got[0].CodigoValidacion)
	}
	got = Filter(records, []string{"casa", "tolva"}, []string{"descripcion"}, MatchAll)
	assert.Empty(t, got)

	// Keywords can match across several fields
	got = Filter(records, []string{"inmueble"}, []string{"tipo_bien", "descripcion"}, MatchAny)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "B", got[0].CodigoValidacion)
	}

	// A record with no text in the fields never matches
	got = Filter(records, []string{"c"}, []string{"descripcion"}, MatchAny)
	for _, r := range got {
		assert.NotEqual(t, "C", r.CodigoValidacion)
	}

	// Blank keywords filter nothing
	assert.Nil(t, Filter(records, []string{"  "}, []string{"descripcion"}, MatchAny))
	assert.Nil(t, Filter(records, nil, []string{"descripcion"}, MatchAny))
}

func TestFieldText(t *testing.T) {
	v := int64(1234567)
	r := Record{
		CodigoValidacion: "F1",
		TipoBien:         "mueble",
		FechaPublicacion: NewDate(day(2025, 9, 15)),
		ValorMinimo:      &v,
	}

	assert.Equal(t, "mueble 1234567", FieldText(&r, []string{"tipo_bien", "valor_minimo"}))
	assert.Equal(t, "2025-09-15", FieldText(&r, []string{"fecha_publicacion"}))
	// Unknown names contribute nothing, nil fields contribute empty text
	assert.Equal(t, " ", FieldText(&r, []string{"precio", "descripcion", "comuna"}))
}
