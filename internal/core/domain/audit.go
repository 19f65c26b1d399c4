package domain

import "time"

// Interaction is one answered question as recorded in the audit log.
type Interaction struct {
	// ID is assigned by the audit log on insert.
	ID int64 `json:"id"`

	// Timestamp is when the question was answered.
	Timestamp time.Time `json:"timestamp"`

	// Question is the user's query.
	Question string `json:"question"`

	// Retrieved holds the chunks retrieved for the question.
	Retrieved []RetrievalResult `json:"retrieved"`

	// Answer is the text returned to the caller.
	Answer string `json:"answer"`

	// Citations holds the chunks the answer cites.
	Citations []RetrievalResult `json:"citations"`

	// ExecutionTime is the wall time spent answering.
	ExecutionTime time.Duration `json:"execution_time_ns"`

	// Status is how the answer was produced.
	Status AnswerStatus `json:"status"`

	// Error is the failure message when generation failed.
	Error string `json:"error,omitempty"`
}

// Metric is a free-form numeric measurement.
type Metric struct {
	ID        int64          `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Name      string         `json:"name"`
	Value     float64        `json:"value"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TestQuery is the recorded outcome of an evaluation question.
type TestQuery struct {
	ID            int64             `json:"id"`
	Query         string            `json:"query"`
	ExpectedTopic string            `json:"expected_topic"`
	Answer        string            `json:"answer"`
	Citations     []RetrievalResult `json:"citations"`
	Timestamp     time.Time         `json:"timestamp"`
	Success       bool              `json:"success"`
}

// Metric names recorded by the pipeline.
const (
	MetricIndexBuildSeconds = "index_build_seconds"
	MetricIndexChunks       = "index_chunks"
	MetricIndexDocuments    = "index_documents"
	MetricRetrievalSeconds  = "retrieval_seconds"
	MetricAnswerSeconds     = "answer_seconds"
)

// EvalCase is one evaluation question with the topic its answer should mention.
type EvalCase struct {
	Query         string `yaml:"query" json:"query"`
	ExpectedTopic string `yaml:"expected_topic" json:"expected_topic"`
}
