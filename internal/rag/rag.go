package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"filing-rag/internal/chunker"
	"filing-rag/internal/edgar"
	"filing-rag/internal/embedding"
	"filing-rag/internal/extract"
	"filing-rag/internal/models"
	"filing-rag/internal/store"
)

// Generator turns an assembled prompt into an answer. The pipeline depends
// on the capability but never implements a model itself.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EchoGenerator returns the prompt behind a banner instead of calling a
// language model. Default when no model is wired in; also used in tests.
type EchoGenerator struct{}

func (EchoGenerator) Generate(_ context.Context, prompt string) (string, error) {
	return "(LLM call disabled; showing retrieval prompt)\n\n" + prompt, nil
}

// Pipeline ties fetching, extraction, chunking, embedding, indexing and
// retrieval together over one shared store.
//
// Not safe for concurrent ingestion of the same key; callers sharing a
// data directory across processes need external single-writer discipline.
type Pipeline struct {
	client       *edgar.Client
	embedder     embeddings.Embedder
	store        *store.Store
	generator    Generator
	chunkSize    int
	chunkOverlap int
}

func New(client *edgar.Client, embedder embeddings.Embedder, st *store.Store, generator Generator, chunkSize, chunkOverlap int) *Pipeline {
	if generator == nil {
		generator = EchoGenerator{}
	}
	return &Pipeline{
		client:       client,
		embedder:     embedder,
		store:        st,
		generator:    generator,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// EnsureIndexed ingests the filing for (ticker, year, quarter) unless the
// registry already holds its key. The check is purely local; repeat calls
// for an ingested key make no network requests.
func (p *Pipeline) EnsureIndexed(ctx context.Context, ticker string, year int, quarter models.Quarter) error {
	key := models.Key(ticker, year, quarter)
	if p.store.HasKey(key) {
		log.Debug().Str("key", key).Msg("Filing already indexed")
		return nil
	}

	cik, err := p.client.ResolveCIK(ctx, ticker)
	if err != nil {
		return err
	}
	url, err := p.client.LocateFiling(ctx, cik, year, quarter)
	if err != nil {
		return err
	}
	html, err := p.client.Fetch(ctx, url)
	if err != nil {
		return err
	}

	text, err := extract.FilingText(html)
	if err != nil {
		return err
	}
	chunks, err := chunker.Split(text, p.chunkSize, p.chunkOverlap)
	if err != nil {
		return err
	}

	vecs, err := embedding.EmbedChunks(ctx, p.embedder, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	base := p.store.NextGlobalID()
	tickerUpper := strings.ToUpper(ticker)
	metas := make([]models.ChunkMetadata, len(chunks))
	for i := range chunks {
		metas[i] = models.ChunkMetadata{
			Key:       key,
			Ticker:    tickerUpper,
			Year:      year,
			Quarter:   quarter,
			ChunkID:   i,
			GlobalID:  base + i,
			SourceURL: url,
		}
	}
	entry := models.RegistryEntry{
		Ticker:    tickerUpper,
		Year:      year,
		Quarter:   quarter,
		Chunks:    len(chunks),
		SourceURL: url,
	}
	return p.store.Append(ctx, key, entry, chunks, metas, vecs)
}

// Retrieve embeds the question with the ingestion-time embedder and
// returns up to k stored passages, best match first. Index hits that do
// not resolve to a stored chunk are dropped silently.
func (p *Pipeline) Retrieve(ctx context.Context, question string, k int) ([]models.RetrievedChunk, error) {
	qvec, err := p.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	hits, err := p.store.Search(ctx, qvec, k)
	if err != nil {
		return nil, err
	}

	results := make([]models.RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		text, meta, ok := p.store.Lookup(h.GlobalID)
		if !ok {
			continue
		}
		results = append(results, models.RetrievedChunk{Text: text, Meta: meta, Distance: h.Distance})
	}
	return results, nil
}

// BuildPrompt assembles a context-grounded prompt: each retrieved passage
// under a citation label, then the question, with an instruction to cite
// only the provided sources.
func BuildPrompt(question string, chunks []models.RetrievedChunk) string {
	var context strings.Builder
	for i, item := range chunks {
		m := item.Meta
		context.WriteString(fmt.Sprintf("[Source %d | %s %d %s | chunk %d]\n%s\n\n",
			i+1, m.Ticker, m.Year, m.Quarter, m.ChunkID, item.Text))
	}
	return fmt.Sprintf(models.PromptTemplate, strings.TrimRight(context.String(), "\n"), question)
}

// Answer runs the whole flow: ensure the filing is indexed, retrieve the
// best k passages, assemble the prompt and hand it to the generator. The
// retrieved chunks come back alongside the answer for citation display.
func (p *Pipeline) Answer(ctx context.Context, ticker string, year int, quarter models.Quarter, question string, k int) (string, []models.RetrievedChunk, error) {
	if err := p.EnsureIndexed(ctx, ticker, year, quarter); err != nil {
		return "", nil, err
	}
	retrieved, err := p.Retrieve(ctx, question, k)
	if err != nil {
		return "", nil, err
	}
	prompt := BuildPrompt(question, retrieved)
	answer, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return "", nil, err
	}
	return answer, retrieved, nil
}
