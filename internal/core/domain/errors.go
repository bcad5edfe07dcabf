package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown provider or backend name.
	ErrUnsupportedType = errors.New("unsupported type")

	// Catalog Errors.

	// ErrDataset indicates malformed or inconsistent load-time inputs,
	// such as a metadata/vector row-count mismatch. Fatal at startup.
	ErrDataset = errors.New("dataset error")

	// ErrConfigDimension indicates the index configuration dimension does not
	// match the vector store. Fatal at startup.
	ErrConfigDimension = errors.New("index dimension does not match dataset")

	// ErrNotBuilt indicates an index was queried before construction.
	ErrNotBuilt = errors.New("index not built")

	// Request Errors.

	// ErrEmbedding indicates the embedder could not produce a vector.
	// Fatal to the single request only.
	ErrEmbedding = errors.New("embedding failed")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStorage indicates the durable key-value layer failed on read or write.
	ErrStorage = errors.New("storage error")

	// ErrUpstream indicates the encyclopedia API failed or answered
	// with something unusable.
	ErrUpstream = errors.New("encyclopedia unavailable")

	// ErrAmbiguous indicates a query resolved to a disambiguation page or an
	// article without a usable summary.
	ErrAmbiguous = errors.New("ambiguous article")
)

// Reader-facing notices for request errors.
const (
	NoticeNotFound  = "Nothing found for this query."
	NoticeAmbiguous = "This has many meanings, please refine the query."
	NoticeFailure   = "Something went wrong, please try again."
)

// Notice maps a request error to the message shown to a reader.
// Details stay in the logs.
func Notice(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return NoticeNotFound
	case errors.Is(err, ErrAmbiguous):
		return NoticeAmbiguous
	default:
		return NoticeFailure
	}
}
