package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"filing-rag/internal/models"
)

// Registry records which filings have already been ingested, keyed by the
// canonical TICKER_YEAR_QUARTER form. The whole map is rewritten on every
// Put; entries are never mutated or removed.
type Registry struct {
	path    string
	entries map[string]models.RegistryEntry
}

// LoadRegistry reads the registry file at path. A missing file is an
// empty registry.
func LoadRegistry(path string) (*Registry, error) {
	r := &Registry{path: path, entries: make(map[string]models.RegistryEntry)}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &r.entries); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", path, err)
	}
	return r, nil
}

// Has reports whether key has been ingested.
func (r *Registry) Has(key string) bool {
	_, ok := r.entries[key]
	return ok
}

// Entry returns the registry entry for key.
func (r *Registry) Entry(key string) (models.RegistryEntry, bool) {
	e, ok := r.entries[key]
	return e, ok
}

// Len returns the number of ingested filings.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Put records an entry and immediately persists the registry.
func (r *Registry) Put(key string, entry models.RegistryEntry) error {
	r.entries[key] = entry
	data, err := json.MarshalIndent(r.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o644)
}
