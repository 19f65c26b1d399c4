// Package hashing provides a deterministic, offline embedding service based on
// signed feature hashing of word unigrams and bigrams.
//
// It needs no model download or network access, which makes it the default for
// fresh installs, air-gapped machines and tests. Texts sharing words land close
// together; it carries no deeper semantics.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultDimensions is the vector size of the default model.
const DefaultDimensions = 384

// ModelPrefix names hashing models as ModelPrefix + dimensions.
const ModelPrefix = "hashing-"

// EmbeddingService maps text to L2-normalised hashed feature vectors.
type EmbeddingService struct {
	dimensions int
	model      string
}

// NewEmbeddingService creates a hashing embedder with the given vector size.
// A non-positive size selects DefaultDimensions.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{
		dimensions: dimensions,
		model:      ModelPrefix + strconv.Itoa(dimensions),
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.vector(text), nil
}

// EmbedBatch generates one embedding per text, in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = s.vector(text)
	}
	return out, nil
}

func (s *EmbeddingService) vector(text string) []float32 {
	acc := make([]float64, s.dimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for i, w := range words {
		s.add(acc, w, 1)
		if i > 0 {
			s.add(acc, words[i-1]+" "+w, 0.5)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, s.dimensions)
	if norm == 0 {
		return vec
	}
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

// add hashes feature into a bucket with a hash-derived sign.
func (s *EmbeddingService) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(s.dimensions))
	if sum>>63 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model identifier, e.g. "hashing-384".
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

