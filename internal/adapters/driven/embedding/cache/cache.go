// Package cache keeps recent embeddings in memory so repeated questions are
// not sent to the embedding provider again.
package cache

import (
	"context"
	"fmt"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService wraps another embedder. Entries are keyed by model and
// text and expire after the configured TTL.
type EmbeddingService struct {
	next  driven.EmbeddingService
	items *gocache.Cache
}

// New wraps next with a cache. A ttl of zero or less returns next unchanged.
func New(next driven.EmbeddingService, ttl time.Duration) driven.EmbeddingService {
	if ttl <= 0 {
		return next
	}
	return &EmbeddingService{
		next:  next,
		items: gocache.New(ttl, 2*ttl),
	}
}

func (s *EmbeddingService) key(text string) string {
	return s.next.ModelName() + "\x00" + text
}

// Embed implements driven.EmbeddingService.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch answers cached texts locally and sends only the misses, in one call.
// Callers own the returned vectors; the cache keeps its own copies.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var slots []int

	for i, text := range texts {
		if v, ok := s.items.Get(s.key(text)); ok {
			out[i] = slices.Clone(v.([]float32))
			continue
		}
		missing = append(missing, text)
		slots = append(slots, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := s.next.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("%w: %d embeddings for %d inputs", domain.ErrEmbeddingService, len(vecs), len(missing))
	}
	for j, vec := range vecs {
		out[slots[j]] = vec
		s.items.SetDefault(s.key(missing[j]), slices.Clone(vec))
	}
	return out, nil
}

// Len reports the number of cached entries, expired ones included until purged.
func (s *EmbeddingService) Len() int { return s.items.ItemCount() }

// Dimensions implements driven.EmbeddingService.
func (s *EmbeddingService) Dimensions() int { return s.next.Dimensions() }

// ModelName implements driven.EmbeddingService.
func (s *EmbeddingService) ModelName() string { return s.next.ModelName() }

// Ping implements driven.EmbeddingService.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close drops the cache. The wrapped embedder is closed by its owner.
func (s *EmbeddingService) Close() error {
	s.items.Flush()
	return nil
}
