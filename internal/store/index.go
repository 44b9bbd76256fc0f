package store

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
)

const compress = false

// Hit is one nearest-neighbor match, identified by the chunk's global id.
type Hit struct {
	GlobalID int
	Distance float32
}

// Index wraps a persistent chromem-go collection used as the vector index.
// Document IDs are decimal global ids, so the embedding for global id i is
// always the one matching position i of the text and metadata stores.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// OpenIndex opens or creates the vector index under dbPath. The embedding
// dimension is fixed by the first insert for the lifetime of the index.
func OpenIndex(dbPath, collectionName string) (*Index, error) {
	db, err := chromem.NewPersistentDB(dbPath, compress)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector index: %v", err)
	}
	c, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}
	return &Index{db: db, collection: c}, nil
}

// Add inserts one embedding per chunk with ids base..base+len(chunks)-1.
func (ix *Index) Add(ctx context.Context, base int, chunks []string, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(chunks))
	for i := range chunks {
		docs[i] = chromem.Document{
			ID:        strconv.Itoa(base + i),
			Content:   chunks[i],
			Embedding: embeddings[i],
		}
	}
	if err := ix.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

// Count returns the number of embeddings held by the index.
func (ix *Index) Count() int {
	return ix.collection.Count()
}

// Search returns up to k nearest neighbors, nearest first. Distance is one
// minus cosine similarity. Results whose id does not parse as a valid
// global id are dropped rather than surfaced.
func (ix *Index) Search(ctx context.Context, queryEmbedding []float32, k int) ([]Hit, error) {
	count := ix.collection.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	results, err := ix.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %v", err)
	}
	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		id, err := strconv.Atoi(r.ID)
		if err != nil || id < 0 {
			continue
		}
		hits = append(hits, Hit{GlobalID: id, Distance: 1 - r.Similarity})
	}
	return hits, nil
}
