package domain

import "errors"

// Domain errors represent pipeline failures.
// Callers distinguish them with errors.Is; adapters wrap them with context.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a document format no extractor handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrExtraction indicates a single document could not be read.
	// It is absorbed per document; the rest of the corpus is still processed.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmptyCorpus indicates the corpus produced zero chunks.
	// No index is built from zero content.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrIndexMissing indicates no index has been built or its artifacts are absent.
	ErrIndexMissing = errors.New("index missing")

	// ErrIndexCorrupt indicates the persisted vectors and metadata do not agree.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrDimensionMismatch indicates a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmbeddingService indicates the embedding call failed (model, auth, network).
	ErrEmbeddingService = errors.New("embedding service failed")

	// ErrGenerationService indicates the answer generation call failed.
	ErrGenerationService = errors.New("generation service failed")

	// ErrEmbeddingUnavailable indicates no embedding provider is configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates no generation provider is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)

// kinds maps taxonomy errors to short names, most specific first.
var kinds = []struct {
	err  error
	name string
}{
	{ErrIndexCorrupt, "index_corrupt"},
	{ErrIndexMissing, "index_missing"},
	{ErrEmptyCorpus, "empty_corpus"},
	{ErrExtraction, "extraction"},
	{ErrEmbeddingService, "embedding_service"},
	{ErrGenerationService, "generation_service"},
	{ErrDimensionMismatch, "dimension_mismatch"},
	{ErrEmbeddingUnavailable, "embedding_unavailable"},
	{ErrLLMUnavailable, "llm_unavailable"},
	{ErrInvalidInput, "invalid_input"},
	{ErrUnsupportedType, "unsupported_type"},
	{ErrNotFound, "not_found"},
}

// ErrorKind returns the taxonomy name of err, or "internal" if it wraps
// none of the domain errors, or "" for a nil error.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}
