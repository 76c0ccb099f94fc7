package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sjsage522/remateworker/internal/remates"
)

func sp(s string) *string { return &s }

func TestWriteDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "remates.json")
	records := []remates.Record{
		{
			CodigoValidacion: "F1",
			TipoBien:         "mueble",
			FechaPublicacion: remates.NewDate(time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)),
			Descripcion:      sp("Remate de camión & carro"),
			FuenteURL:        "https://boletinconcursal.cl/boletin/downloadDocumentoByCodigo?codigoValidacion=F1",
		},
	}

	assert.NoError(t, WriteDataset(path, records))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	var ds Dataset
	assert.NoError(t, json.Unmarshal(data, &ds))
	_, err = time.Parse(time.RFC3339, ds.UpdatedAt)
	assert.NoError(t, err, "updated_at must be RFC3339")
	if assert.Len(t, ds.Records, 1) {
		assert.Equal(t, "F1", ds.Records[0].CodigoValidacion)
		assert.Equal(t, "2025-09-15", ds.Records[0].FechaPublicacion.Format("2006-01-02"))
	}

	// Text stays readable: indented, no HTML escaping of & in URLs or text
	text := string(data)
	assert.Contains(t, text, "\n  \"records\"")
	assert.Contains(t, text, "camión & carro")
	assert.NotContains(t, text, `\u0026`)
}

func TestWriteDatasetEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remates.json")
	assert.NoError(t, WriteDataset(path, nil))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	// An empty run still writes a list, not null
	assert.Contains(t, string(data), `"records": []`)
}

func TestWriteJSONCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "items.json")
	assert.NoError(t, WriteJSON(path, []string{"uno", "dos"}))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "[\n  \"uno\",\n  \"dos\"\n]", strings.TrimSpace(string(data)))
}
