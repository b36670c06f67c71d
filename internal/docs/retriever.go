package docs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// NoResults is returned when the index has nothing relevant to say.
const NoResults = "No relevant documentation found."

// Embedder turns text into a vector. Satisfied by embeddings.Client.
type Embedder interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}

// Retriever answers documentation queries from an embedded index.
type Retriever struct {
	embedder Embedder
	index    *Index
	topK     int
	logger   *slog.Logger
}

// NewRetriever creates a retriever. topK defaults to 2.
func NewRetriever(embedder Embedder, topK int, logger *slog.Logger) *Retriever {
	if topK <= 0 {
		topK = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		embedder: embedder,
		index:    NewIndex(),
		topK:     topK,
		logger:   logger,
	}
}

// Build chunks and indexes a set of documents. Called once at startup;
// indexing the toy corpus takes one embedding call per chunk.
func (r *Retriever) Build(ctx context.Context, documents []Document) error {
	splitter := NewSplitter()
	chunks := splitter.SplitAll(documents)

	for _, chunk := range chunks {
		vector, err := r.embedder.Generate(ctx, chunk.Text)
		if err != nil {
			return fmt.Errorf("embed chunk from %s: %w", chunk.Source, err)
		}
		r.index.Add(chunk, vector)
	}

	r.logger.Info("documentation index built",
		"documents", len(documents), "chunks", r.index.Len())
	return nil
}

// Len reports the number of indexed chunks.
func (r *Retriever) Len() int {
	return r.index.Len()
}

// Retrieve searches the index and renders matching chunks as context
// text. Faults come back as text, not errors, so the answer cycle can
// explain the failure instead of dying.
func (r *Retriever) Retrieve(ctx context.Context, query string) string {
	vector, err := r.embedder.Generate(ctx, query)
	if err != nil {
		r.logger.Warn("documentation search failed", "error", err)
		return fmt.Sprintf("Documentation search error: %v", err)
	}

	results := r.index.Search(vector, r.topK)
	if len(results) == 0 {
		return NoResults
	}

	texts := make([]string, len(results))
	for i, chunk := range results {
		texts[i] = chunk.Text
	}
	return strings.Join(texts, "\n\n")
}
