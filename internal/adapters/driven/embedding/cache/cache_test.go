package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// countingEmbedder returns [len(text)] and records every batch it receives.
type countingEmbedder struct {
	batches [][]string
	model   string
	err     error
	short   bool
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.batches = append(c.batches, texts)
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, []float32{float32(len(t))})
	}
	if c.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int { return 1 }
func (c *countingEmbedder) ModelName() string { return c.model }
func (c *countingEmbedder) Ping(_ context.Context) error { return nil }
func (c *countingEmbedder) Close() error { return nil }

func TestNew_ZeroTTLDisables(t *testing.T) {
	next := &countingEmbedder{}

	assert.Same(t, next, New(next, 0))
	assert.Same(t, next, New(next, -time.Second))
}

func TestEmbed_RepeatedQueryHitsCache(t *testing.T) {
	next := &countingEmbedder{model: "m"}
	svc := New(next, time.Minute)

	first, err := svc.Embed(context.Background(), "refund window")
	require.NoError(t, err)
	second, err := svc.Embed(context.Background(), "refund window")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, next.batches, 1)
	assert.Equal(t, 1, svc.(*EmbeddingService).Len())
}

func TestEmbed_CallerCannotCorruptCache(t *testing.T) {
	next := &countingEmbedder{model: "m"}
	svc := New(next, time.Minute)
	ctx := context.Background()

	first, err := svc.Embed(ctx, "hello")
	require.NoError(t, err)
	first[0] = 42

	second, err := svc.Embed(ctx, "hello")
	require.NoError(t, err)
	second[0] = 7

	third, err := svc.Embed(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{5}, third)
	assert.Len(t, next.batches, 1)
}

func TestEmbedBatch_SendsOnlyMisses(t *testing.T) {
	next := &countingEmbedder{model: "m"}
	svc := New(next, time.Minute)
	ctx := context.Background()

	_, err := svc.EmbedBatch(ctx, []string{"a", "bbb"})
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(ctx, []string{"bbb", "cc", "a"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{{3}, {2}, {1}}, vecs)
	require.Len(t, next.batches, 2)
	assert.Equal(t, []string{"cc"}, next.batches[1])
}

func TestEmbedBatch_Errors(t *testing.T) {
	boom := errors.New("boom")
	next := &countingEmbedder{err: boom}
	svc := New(next, time.Minute)

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, svc.(*EmbeddingService).Len())

	short := New(&countingEmbedder{short: true}, time.Minute)
	_, err = short.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
}

func TestClose_Flushes(t *testing.T) {
	svc := New(&countingEmbedder{}, time.Minute).(*EmbeddingService)
	_, err := svc.Embed(context.Background(), "q")
	require.NoError(t, err)

	require.NoError(t, svc.Close())
	assert.Zero(t, svc.Len())
}

func TestExpiry(t *testing.T) {
	next := &countingEmbedder{}
	svc := New(next, 20*time.Millisecond)

	_, err := svc.Embed(context.Background(), "q")
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = svc.Embed(context.Background(), "q")
	require.NoError(t, err)

	assert.Len(t, next.batches, 2)
}
