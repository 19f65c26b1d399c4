package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	model    string
	vector   []float32
	// byText overrides vector for the texts it names.
	byText   map[string][]float32
	embedErr error
	// short drops the last vector of every batch.
	short bool
	// ragged makes the second vector of a batch one element longer.
	ragged bool

	mu      sync.Mutex
	batches [][]string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, texts)
	m.mu.Unlock()

	if m.embedErr != nil {
		return nil, m.embedErr
	}
	vec := m.vector
	if vec == nil {
		vec = []float32{1, 0}
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = vec
		if v, ok := m.byText[text]; ok {
			out[i] = v
		}
		if m.ragged && i == 1 {
			out[i] = append(append([]float32{}, vec...), 0)
		}
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int {
	if m.vector == nil {
		return 2
	}
	return len(m.vector)
}

func (m *mockEmbedder) ModelName() string {
	if m.model == "" {
		return "mock-embed"
	}
	return m.model
}

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

// mockIndex implements driven.VectorIndex for testing.
type mockIndex struct {
	info      domain.IndexInfo
	loaded    bool
	loadErr   error
	buildErr  error
	searchErr error
	hits      []domain.Neighbor

	loads   int
	built   []domain.Chunk
	vectors [][]float32
	queries [][]float32
}

func (m *mockIndex) Build(_ context.Context, chunks []domain.Chunk, vectors [][]float32, info domain.IndexInfo) error {
	if m.buildErr != nil {
		return m.buildErr
	}
	m.built = chunks
	m.vectors = vectors
	info.BuildID = "build-1"
	info.Count = len(chunks)
	info.Dimension = len(vectors[0])
	m.info = info
	m.loaded = true
	return nil
}

func (m *mockIndex) Load(_ context.Context) error {
	m.loads++
	if m.loadErr != nil {
		return m.loadErr
	}
	m.loaded = true
	return nil
}

func (m *mockIndex) Search(_ context.Context, query []float32, k int) ([]domain.Neighbor, error) {
	m.queries = append(m.queries, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits[:min(k, len(m.hits))], nil
}

func (m *mockIndex) Info() (domain.IndexInfo, bool) {
	return m.info, m.loaded
}

func (m *mockIndex) Close() error { return nil }

// mockGenerator implements driven.Generator for testing.
type mockGenerator struct {
	answer  string
	err     error
	prompts []string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockGenerator) ModelName() string { return "mock-llm" }

func (m *mockGenerator) Ping(_ context.Context) error { return nil }

func (m *mockGenerator) Close() error { return nil }

// mockRetriever implements driving.RetrievalService for testing.
type mockRetriever struct {
	results []domain.RetrievalResult
	err     error
	topKs   []int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, topK int) ([]domain.RetrievalResult, error) {
	m.topKs = append(m.topKs, topK)
	return m.results, m.err
}

// mockAnswers implements driving.AnswerService for testing.
type mockAnswers struct {
	answers map[string]domain.Answer
	errs    map[string]error
}

func (m *mockAnswers) Answer(_ context.Context, query string) (domain.Answer, error) {
	return m.answers[query], m.errs[query]
}

// failingAudit implements driven.AuditLog and fails every call.
type failingAudit struct{}

var errAudit = errors.New("audit unavailable")

func (failingAudit) LogInteraction(context.Context, domain.Interaction) (int64, error) {
	return 0, errAudit
}

func (failingAudit) LogMetric(context.Context, domain.Metric) error { return errAudit }

func (failingAudit) LogTestQuery(context.Context, domain.TestQuery) error { return errAudit }

func (failingAudit) RecentInteractions(context.Context, int) ([]domain.Interaction, error) {
	return nil, errAudit
}

func (failingAudit) Metrics(context.Context, string, int) ([]domain.Metric, error) {
	return nil, errAudit
}

func (failingAudit) TestQueries(context.Context) ([]domain.TestQuery, error) {
	return nil, errAudit
}

func (failingAudit) Close() error { return nil }

// mockIndexService implements driving.IndexService for testing.
type mockIndexService struct {
	mu     sync.Mutex
	builds int
	err    error
	built  chan struct{}
}

var _ driving.IndexService = (*mockIndexService)(nil)

func (m *mockIndexService) Build(_ context.Context) (domain.BuildReport, error) {
	m.mu.Lock()
	m.builds++
	m.mu.Unlock()
	if m.built != nil {
		m.built <- struct{}{}
	}
	return domain.BuildReport{Info: domain.IndexInfo{Count: 1}}, m.err
}

func (m *mockIndexService) Status(_ context.Context) (domain.IndexInfo, error) {
	return domain.IndexInfo{}, nil
}

func (m *mockIndexService) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.builds
}

// mockNotifier implements driven.ChangeNotifier for testing.
type mockNotifier struct {
	changes chan string
	errs    chan error
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{changes: make(chan string), errs: make(chan error)}
}

func (m *mockNotifier) Changes() <-chan string { return m.changes }

func (m *mockNotifier) Errors() <-chan error { return m.errs }

func (m *mockNotifier) Close() error { return nil }
