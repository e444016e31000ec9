package model

import (
	"github.com/google/uuid"
	"github.com/insight-lab/mnemosyne/pkg/domain/types"
)

// EmbeddingDimension is the fixed output size of the embedding model
// (384 in the reference configuration). Every vector within one
// deployment has this dimensionality.
const EmbeddingDimension = 384

// RecordID is a UUID-based identifier for MemoryRecord
type RecordID string

// NewRecordID generates a new time-ordered RecordID
func NewRecordID() RecordID {
	return RecordID(uuid.Must(uuid.NewV7()).String())
}

// RecordPayload is the stored payload of a memory record. Type and
// Level drive filtered retrieval.
type RecordPayload struct {
	Content  string
	Type     types.RecordType
	Level    int
	Metadata map[string]any
}

// MemoryRecord is an embedded text record stored in the vector layer.
// Overwritten on ID collision; lifetime equals store lifetime.
type MemoryRecord struct {
	ID        RecordID
	Embedding []float32
	Payload   RecordPayload
}

// SearchHit is a ranked result from vector similarity search
type SearchHit struct {
	Score   float64
	Payload RecordPayload
}
