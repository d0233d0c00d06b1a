package execution

import "context"

// EvidenceStore persists receive evidence (documents, photos) and returns
// opaque identifiers. Storage itself is an external collaborator; the engine
// only records the identifiers it hands back.
type EvidenceStore interface {
	Store(ctx context.Context, contentType string, data []byte) (id string, err error)
}
