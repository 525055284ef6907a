// Package feed writes the aggregated showtimes file consumed by the site.
package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"tokyokino/models"
)

// Write sorts the records and writes them as a pretty-printed JSON array.
// The write goes through a temp file so a crash never leaves a truncated
// feed behind.
func Write(path string, records []models.ShowingRecord) error {
	models.SortShowings(records)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if records == nil {
		records = []models.ShowingRecord{}
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("feed: encode: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".showtimes-*.json")
	if err != nil {
		return fmt.Errorf("feed: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("feed: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("feed: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("feed: rename: %w", err)
	}
	log.Printf("[feed] wrote %d showings to %s", len(records), path)
	return nil
}
