// Package storage persists scraped datasets as JSON files.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"sjsage522/remateworker/internal/remates"
	"sjsage522/remateworker/logger"
)

// Dataset is the remates output envelope.
type Dataset struct {
	UpdatedAt string           `json:"updated_at"`
	Records   []remates.Record `json:"records"`
}

// WriteDataset writes the records under the dataset envelope: a UTC RFC3339
// update timestamp plus the records themselves.
func WriteDataset(path string, records []remates.Record) error {
	if records == nil {
		records = []remates.Record{}
	}
	ds := Dataset{
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Records:   records,
	}
	if err := WriteJSON(path, ds); err != nil {
		return err
	}
	logger.ForStorage().Info().
		Int("records", len(records)).
		Str("path", path).
		Msg("Dataset written")
	return nil
}

// WriteJSON writes v as two-space indented JSON at path, creating missing
// parent directories. Non-ASCII text is written as-is, not escaped.
func WriteJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
