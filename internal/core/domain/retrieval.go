package domain

// Neighbor is a raw nearest-neighbour hit returned by a vector index.
type Neighbor struct {
	// Chunk is the metadata stored at the hit's position.
	Chunk Chunk

	// Distance is the squared Euclidean distance to the query vector.
	Distance float64
}

// RetrievalResult is a chunk ranked against a query.
// Results are produced fresh for every query and never persisted in the index.
type RetrievalResult struct {
	Chunk

	// Score is the relevance in (0, 1]; higher is more relevant.
	Score float64 `json:"score"`

	// Distance is the index distance the score was derived from.
	Distance float64 `json:"distance"`
}

// Score converts an index distance into a relevance score.
// The transform is strictly decreasing in distance, bounded in (0, 1],
// and maps a zero distance to exactly 1.0. It is not a calibrated probability.
func Score(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}

// AnswerStatus describes how an answer was produced.
type AnswerStatus string

// Answer statuses.
const (
	// AnswerStatusAnswered means the generation service produced the answer.
	AnswerStatusAnswered AnswerStatus = "answered"

	// AnswerStatusNoContext means retrieval found nothing to ground an answer.
	AnswerStatusNoContext AnswerStatus = "no_context"

	// AnswerStatusGenerationFailed means the generation service returned an error.
	AnswerStatusGenerationFailed AnswerStatus = "generation_failed"
)

// NoContextAnswer is the fixed reply given when no indexed content is available.
const NoContextAnswer = "[no context available] No indexed document content could be retrieved for this question. " +
	"Build the index from your documents and ask again."

// GenerationErrorPrefix labels answers that carry a generation failure instead of model output.
const GenerationErrorPrefix = "[generation error] "

// Answer is the outcome of answering a question.
type Answer struct {
	// Text is the model answer, NoContextAnswer, or a labelled error message.
	Text string `json:"answer"`

	// Results are the retrieved chunks the answer was grounded on.
	Results []RetrievalResult `json:"results"`

	// Status tells genuine answers apart from fallback replies.
	Status AnswerStatus `json:"status"`
}

// Grounded reports whether the answer came from the generation service.
func (a Answer) Grounded() bool {
	return a.Status == AnswerStatusAnswered
}
