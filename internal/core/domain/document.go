package domain

// Document is a file read from the corpus directory.
// It is identified by its file name and is immutable once read.
type Document struct {
	// Name is the file name (without directory), used as the document identity.
	Name string

	// Path is the location the document was read from.
	Path string

	// Pages holds the non-empty pages in physical order.
	Pages []Page
}

// Page is one page of extracted text.
// Flat text formats produce a single page numbered 1.
type Page struct {
	// Number is the 1-based physical page number.
	Number int

	// Text is the raw extracted text, trimmed.
	Text string
}

// Chunk is a word-aligned window of a page's text.
// Chunks are produced once at index build time and never updated individually.
type Chunk struct {
	// Text is the window's words joined by single spaces. Never empty.
	Text string `json:"text"`

	// Document is the name of the source document.
	Document string `json:"document"`

	// Page is the 1-based page the chunk was cut from.
	Page int `json:"page"`

	// ChunkID is the sequence index of the chunk within its page, starting at 0.
	ChunkID int `json:"chunk_id"`
}
