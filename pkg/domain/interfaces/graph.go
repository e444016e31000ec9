package interfaces

import (
	"context"

	"github.com/insight-lab/mnemosyne/pkg/domain/model"
)

// GraphRepository defines the interface for the entity/relationship
// layer. Implementations with an unreachable backend degrade to
// no-ops so ingestion can proceed without graph enrichment.
type GraphRepository interface {
	// StoreSummaryIntelligence records one summary and its extracted
	// entities as a single atomic unit: user node (from
	// metadata["user"], default "Anonymous"), summary node with WROTE
	// edge, and per entity a merged node by (kind, name) plus a
	// MENTIONS edge carrying the sentiment.
	StoreSummaryIntelligence(ctx context.Context, summaryText string, meta map[string]any, entities []*model.Entity) error

	// QueryEntities returns entity nodes whose name matches the query
	// (case-insensitive substring; empty query matches all), with
	// aggregate mention data, up to limit.
	QueryEntities(ctx context.Context, query string, limit int) ([]*model.GraphEntity, error)
}
