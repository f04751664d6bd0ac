package embed

import (
	"context"
	"math"
	"strings"
)

const (
	hashingVersionTag = "feature-hash-256-v1"
	hashingDims       = 256
)

// Hashing is a deterministic in-process encoder: BPE token ids folded into
// a fixed-width bag-of-words vector, L2-normalized. No model download, no
// network, same text always the same vector. Quality is bounded by lexical
// overlap, which is adequate for short normalized facts and for running
// fully offline.
type Hashing struct{}

func NewHashing() *Hashing {
	return &Hashing{}
}

func (h *Hashing) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	return h.encode(text), nil
}

func (h *Hashing) EncodePassage(ctx context.Context, text string) ([]float32, error) {
	return h.encode(text), nil
}

func (h *Hashing) VersionTag() string {
	return hashingVersionTag
}

func (h *Hashing) Dims() int {
	return hashingDims
}

func (h *Hashing) encode(text string) []float32 {
	vec := make([]float32, hashingDims)
	tokens := getTokenizer().Encode(strings.ToLower(text), nil, nil)
	for _, id := range tokens {
		vec[id%hashingDims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}
