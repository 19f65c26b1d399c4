package domain

import "time"

// IndexInfo describes a persisted index build.
type IndexInfo struct {
	// BuildID identifies the build; both index artifacts carry it.
	BuildID string `json:"build_id"`

	// Model is the embedding model the vectors came from.
	Model string `json:"model"`

	// Dimension is the vector length, fixed for the index lifetime.
	Dimension int `json:"dimension"`

	// Count is the number of indexed chunks.
	Count int `json:"count"`

	// Documents is the number of documents that contributed chunks.
	Documents int `json:"documents"`

	// BuiltAt is when the build completed.
	BuiltAt time.Time `json:"built_at"`
}

// DocumentReport summarises how one document fared during corpus processing.
type DocumentReport struct {
	// Name is the document's file name.
	Name string

	// Pages is the number of non-empty pages extracted.
	Pages int

	// Chunks is the number of chunks produced.
	Chunks int

	// Err is the extraction failure, if any. The document contributed nothing.
	Err error
}

// Failed reports whether the document could not be extracted.
func (r DocumentReport) Failed() bool {
	return r.Err != nil
}

// BuildReport summarises an index build.
type BuildReport struct {
	Info      IndexInfo
	Documents []DocumentReport
	Duration  time.Duration
}

// Failures returns the documents that could not be extracted.
func (r BuildReport) Failures() []DocumentReport {
	var failed []DocumentReport
	for _, d := range r.Documents {
		if d.Failed() {
			failed = append(failed, d)
		}
	}
	return failed
}
