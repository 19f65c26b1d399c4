package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
)

// mockIndexService implements driving.IndexService for testing.
type mockIndexService struct {
	report   domain.BuildReport
	buildErr error
	info     domain.IndexInfo
	infoErr  error
	builds   int
}

func (m *mockIndexService) Build(_ context.Context) (domain.BuildReport, error) {
	m.builds++
	return m.report, m.buildErr
}

func (m *mockIndexService) Status(_ context.Context) (domain.IndexInfo, error) {
	return m.info, m.infoErr
}

// mockRetrievalService implements driving.RetrievalService for testing.
type mockRetrievalService struct {
	results   []domain.RetrievalResult
	err       error
	lastQuery string
	lastTopK  int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, topK int) ([]domain.RetrievalResult, error) {
	m.lastQuery = query
	m.lastTopK = topK
	return m.results, m.err
}

// mockAnswerService implements driving.AnswerService for testing.
type mockAnswerService struct {
	answer    domain.Answer
	err       error
	lastQuery string
}

func (m *mockAnswerService) Answer(_ context.Context, query string) (domain.Answer, error) {
	m.lastQuery = query
	return m.answer, m.err
}

// mockHistoryService implements driving.HistoryService for testing.
type mockHistoryService struct {
	interactions []domain.Interaction
	metrics      []domain.Metric
	testQueries  []domain.TestQuery
	err          error

	lastLimit int
	lastName  string
	evaluated []domain.EvalCase
}

func (m *mockHistoryService) RecentInteractions(_ context.Context, limit int) ([]domain.Interaction, error) {
	m.lastLimit = limit
	return m.interactions, m.err
}

func (m *mockHistoryService) Metrics(_ context.Context, name string, limit int) ([]domain.Metric, error) {
	m.lastName = name
	m.lastLimit = limit
	return m.metrics, m.err
}

func (m *mockHistoryService) TestQueries(_ context.Context) ([]domain.TestQuery, error) {
	return m.testQueries, m.err
}

func (m *mockHistoryService) Evaluate(_ context.Context, cases []domain.EvalCase) ([]domain.TestQuery, error) {
	m.evaluated = cases
	results := make([]domain.TestQuery, 0, len(cases))
	for i, c := range cases {
		results = append(results, domain.TestQuery{
			ID:            int64(i + 1),
			Query:         c.Query,
			ExpectedTopic: c.ExpectedTopic,
			Success:       i%2 == 0,
		})
	}
	return results, m.err
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.Settings
	getErr      error
	validateErr error
	embedErr    error
	llmErr      error
	setErr      error

	set       map[string]string
	embedding []string
	llm       []string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultSettings(), set: map[string]string{}}
}

func (m *mockSettingsService) Get() (domain.Settings, error) { return m.settings, m.getErr }

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"paths.documents", "retrieval.top_k", "llm.max_tokens"}
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedding = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llm = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.Settings { return domain.DefaultSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.embedErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.llmErr }

// mockWatcher implements driving.Watcher for testing.
type mockWatcher struct {
	onResult func(domain.BuildReport, error)
	report   domain.BuildReport
	initial  bool
	started  bool
	stopped  bool
}

func (m *mockWatcher) Start(_ context.Context, initial bool) error {
	m.started = true
	m.initial = initial
	if initial {
		m.onResult(m.report, nil)
	}
	return context.Canceled
}

func (m *mockWatcher) Stop() error {
	m.stopped = true
	return nil
}

type testServices struct {
	index     *mockIndexService
	retrieval *mockRetrievalService
	answer    *mockAnswerService
	history   *mockHistoryService
	settings  *mockSettingsService
	watcher   *mockWatcher
	debounce  time.Duration
	closed    bool
}

// setupTestServices installs mocks for every port and returns them with a cleanup.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{
		index:     &mockIndexService{},
		retrieval: &mockRetrievalService{},
		answer:    &mockAnswerService{},
		history:   &mockHistoryService{},
		settings:  newMockSettingsService(),
		watcher:   &mockWatcher{},
	}
	SetServices(&Services{
		Index:     ts.index,
		Retrieval: ts.retrieval,
		Answer:    ts.answer,
		History:   ts.history,
		Settings:  ts.settings,
		Watch: func(debounce time.Duration, onResult func(domain.BuildReport, error)) (driving.Watcher, func(), error) {
			ts.debounce = debounce
			ts.watcher.onResult = onResult
			return ts.watcher, func() { ts.closed = true }, nil
		},
	})
	t.Cleanup(func() {
		SetServices(nil)
		initializer = nil
	})
	return ts
}

// resetFlags restores flag variables, which persist between executions.
func resetFlags() {
	verbose = false
	configPath = ""
	indexJSON = false
	retrieveTopK = 0
	retrieveJSON = false
	askJSON = false
	historyLimit = 10
	historyJSON = false
	metricsName = ""
	metricsLimit = 20
	evalJSON = false
	watchDebounce = 2 * time.Second
	watchNoInitial = false
	chatWatch = false
	versionJSON = false
	_ = mcpServeCmd.Flags().Set("port", "0")
}

// executeCommand runs the root command with args and returns combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}
