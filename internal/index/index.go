// Package index holds the in-process vector index: exact cosine similarity
// over the live documents' embeddings, with deterministic ordering. The
// index is rebuilt from the document store at startup and kept in sync by
// the ingest path.
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

// Entry is one indexed vector. RetrievedAt and the id are kept for
// tie-breaking; Category for filtered queries.
type Entry struct {
	ID          string
	Vector      []float32
	VersionTag  string
	Category    string
	RetrievedAt time.Time
}

// Hit is one query result. Similarity is cosine, in [-1, 1].
type Hit struct {
	ID         string
	Similarity float64
}

type Index struct {
	mu      sync.RWMutex
	dims    int
	entries map[string]Entry
}

func New(dims int) *Index {
	return &Index{
		dims:    dims,
		entries: make(map[string]Entry),
	}
}

// Upsert stores or replaces the vector for a document. The write is atomic
// with respect to concurrent Query calls: readers see either the old entry
// or the new one, never a partial vector.
func (ix *Index) Upsert(e Entry) error {
	if len(e.Vector) != ix.dims {
		return fmt.Errorf("vector for %s has %d dims, index expects %d", e.ID, len(e.Vector), ix.dims)
	}

	vec := make([]float32, len(e.Vector))
	copy(vec, e.Vector)
	e.Vector = vec

	ix.mu.Lock()
	ix.entries[e.ID] = e
	ix.mu.Unlock()
	return nil
}

func (ix *Index) Remove(id string) {
	ix.mu.Lock()
	delete(ix.entries, id)
	ix.mu.Unlock()
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Query returns up to k hits ordered by similarity descending, ties broken
// by document recency (retrieved_at descending) then id ascending. Fewer
// than k indexed vectors is not an error; all available are returned.
// An empty category matches everything.
func (ix *Index) Query(vector []float32, k int, category string) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(vector) != ix.dims {
		return nil, fmt.Errorf("query vector has %d dims, index expects %d", len(vector), ix.dims)
	}

	ix.mu.RLock()
	type scored struct {
		id          string
		sim         float64
		retrievedAt time.Time
	}
	candidates := make([]scored, 0, len(ix.entries))
	for _, e := range ix.entries {
		if category != "" && e.Category != category {
			continue
		}
		candidates = append(candidates, scored{
			id:          e.ID,
			sim:         cosine(vector, e.Vector),
			retrievedAt: e.RetrievedAt,
		})
	}
	ix.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		if !candidates[i].retrievedAt.Equal(candidates[j].retrievedAt) {
			return candidates[i].retrievedAt.After(candidates[j].retrievedAt)
		}
		return candidates[i].id < candidates[j].id
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	hits := make([]Hit, len(candidates))
	for i, c := range candidates {
		hits[i] = Hit{ID: c.id, Similarity: c.sim}
	}
	return hits, nil
}

// Mismatched returns the ids of entries whose vector was produced under a
// different embedding-model version. Those vectors must be re-embedded
// before they are trusted for ranking.
func (ix *Index) Mismatched(currentTag string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var ids []string
	for id, e := range ix.entries {
		if e.VersionTag != currentTag {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func cosine(a []float32, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
