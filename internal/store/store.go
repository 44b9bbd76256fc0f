package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"filing-rag/internal/helper"
	"filing-rag/internal/models"
)

const (
	registryFile  = "ingested_index.json"
	textStoreFile = "text_store.jsonl"
	metaStoreFile = "meta_store.jsonl"
	indexDir      = "chromem"
)

// ErrInconsistent means the persisted text store, metadata store and vector
// index disagree, typically after a crash mid-ingestion. The store refuses
// to load rather than serve wrong text for a match.
var ErrInconsistent = errors.New("stores out of alignment")

type textRecord struct {
	Text string `json:"text"`
}

// Store keeps the three persisted artifacts in lockstep: an append-only
// JSONL text store, a parallel JSONL metadata store, and a vector index,
// plus the ingestion registry. All state is loaded once at open and
// mirrored in memory; every append is flushed to disk before returning.
//
// A Store is not safe for concurrent ingestion; single-writer discipline
// is up to the caller.
type Store struct {
	dir      string
	texts    []string
	metas    []models.ChunkMetadata
	registry *Registry
	index    *Index
}

// Open loads the stores under dir, creating the directory on first use,
// and verifies their alignment.
func Open(dir, collection string) (*Store, error) {
	if err := helper.CreateFolder(dir); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	index, err := OpenIndex(filepath.Join(dir, indexDir), collection)
	if err != nil {
		return nil, err
	}
	textRecs, err := readJSONL[textRecord](filepath.Join(dir, textStoreFile))
	if err != nil {
		return nil, err
	}
	metas, err := readJSONL[models.ChunkMetadata](filepath.Join(dir, metaStoreFile))
	if err != nil {
		return nil, err
	}
	registry, err := LoadRegistry(filepath.Join(dir, registryFile))
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(textRecs))
	for i, rec := range textRecs {
		texts[i] = rec.Text
	}

	s := &Store{dir: dir, texts: texts, metas: metas, registry: registry, index: index}
	if err := s.checkAlignment(); err != nil {
		return nil, err
	}

	log.Debug().Int("chunks", len(texts)).Int("filings", registry.Len()).Str("dir", dir).Msg("Opened store")
	return s, nil
}

func (s *Store) checkAlignment() error {
	if len(s.texts) != len(s.metas) || len(s.texts) != s.index.Count() {
		return fmt.Errorf("%w: texts=%d metas=%d index=%d",
			ErrInconsistent, len(s.texts), len(s.metas), s.index.Count())
	}
	for i := range s.metas {
		if s.metas[i].GlobalID != i {
			return fmt.Errorf("%w: metadata at position %d has global_id %d",
				ErrInconsistent, i, s.metas[i].GlobalID)
		}
	}
	return nil
}

// Len returns the number of stored chunks.
func (s *Store) Len() int {
	return len(s.texts)
}

// NextGlobalID returns the global id the next appended chunk will receive.
func (s *Store) NextGlobalID() int {
	return len(s.texts)
}

// HasKey reports whether a filing has already been ingested under key.
func (s *Store) HasKey(key string) bool {
	return s.registry.Has(key)
}

// Entry returns the registry entry for key.
func (s *Store) Entry(key string) (models.RegistryEntry, bool) {
	return s.registry.Entry(key)
}

// Append persists one ingested filing: chunk texts, their metadata, their
// embeddings, and the registry entry marking the key as done.
//
// Write order is text store, metadata store, vector index, registry. A
// crash mid-sequence leaves extra JSONL rows rather than vectors with no
// text behind them, and Open refuses to load such a directory.
func (s *Store) Append(ctx context.Context, key string, entry models.RegistryEntry, chunks []string, metas []models.ChunkMetadata, embeddings [][]float32) error {
	if len(chunks) != len(metas) || len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/meta/embedding count mismatch: %d/%d/%d",
			len(chunks), len(metas), len(embeddings))
	}
	base := len(s.texts)
	for i := range metas {
		if metas[i].GlobalID != base+i {
			return fmt.Errorf("%w: metadata %d has global_id %d, want %d",
				ErrInconsistent, i, metas[i].GlobalID, base+i)
		}
	}

	textRecs := make([]textRecord, len(chunks))
	for i, c := range chunks {
		textRecs[i] = textRecord{Text: c}
	}
	if err := appendJSONL(filepath.Join(s.dir, textStoreFile), textRecs); err != nil {
		return fmt.Errorf("append text store: %w", err)
	}
	if err := appendJSONL(filepath.Join(s.dir, metaStoreFile), metas); err != nil {
		return fmt.Errorf("append meta store: %w", err)
	}
	if err := s.index.Add(ctx, base, chunks, embeddings); err != nil {
		return err
	}
	if err := s.registry.Put(key, entry); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}

	s.texts = append(s.texts, chunks...)
	s.metas = append(s.metas, metas...)

	log.Info().Str("key", key).Int("chunks", len(chunks)).Int("total", len(s.texts)).Msg("Ingested filing")
	return nil
}

// Search returns up to k nearest neighbors for the query embedding,
// nearest first.
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, k int) ([]Hit, error) {
	return s.index.Search(ctx, queryEmbedding, k)
}

// Lookup resolves a global id to its chunk text and metadata. It returns
// false for ids outside the stores, including the -1 no-match sentinel
// some indexes emit.
func (s *Store) Lookup(globalID int) (string, models.ChunkMetadata, bool) {
	if globalID < 0 || globalID >= len(s.texts) {
		return "", models.ChunkMetadata{}, false
	}
	return s.texts[globalID], s.metas[globalID], true
}
