package docs

import (
	"sync"

	"github.com/netsage/netsage/internal/embeddings"
)

// Index is an in-memory vector index over documentation chunks.
type Index struct {
	mu      sync.RWMutex
	chunks  []Chunk
	vectors [][]float32
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Add stores a chunk with its embedding.
func (ix *Index) Add(chunk Chunk, vector []float32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.chunks = append(ix.chunks, chunk)
	ix.vectors = append(ix.vectors, vector)
}

// Len reports the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Search returns the k chunks most similar to the query vector,
// best first.
func (ix *Index) Search(query []float32, k int) []Chunk {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.chunks) == 0 || k <= 0 {
		return nil
	}

	top := embeddings.TopK(query, ix.vectors, k)
	results := make([]Chunk, 0, len(top))
	for _, idx := range top {
		results = append(results, ix.chunks[idx])
	}
	return results
}
