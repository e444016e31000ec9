package interfaces

import (
	"context"

	"github.com/insight-lab/mnemosyne/pkg/domain/model"
)

// VectorRepository defines the interface for the vector similarity
// layer. The backing collection is created lazily on first use.
type VectorRepository interface {
	// Upsert writes records keyed by their ID. An existing record with
	// the same ID is overwritten.
	Upsert(ctx context.Context, records []*model.MemoryRecord) error

	// Search returns up to limit hits ordered by descending cosine
	// similarity to the query vector.
	Search(ctx context.Context, vector []float32, limit int) ([]*model.SearchHit, error)

	// ScrollByMetadata returns payloads whose payload field `key`
	// equals `value`, up to limit. Used to recover stored summaries
	// for global aggregation.
	ScrollByMetadata(ctx context.Context, key, value string, limit int) ([]*model.RecordPayload, error)
}
