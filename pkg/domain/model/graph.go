package model

import (
	"github.com/google/uuid"
	"github.com/insight-lab/mnemosyne/pkg/domain/types"
)

// Entity is a named concept extracted from a summary. Kind is
// untrusted until sanitized by the graph layer.
type Entity struct {
	Name      string
	Kind      types.EntityKind
	Sentiment types.Sentiment
}

// SummaryNodeID is the identifier of a summary node in the graph
type SummaryNodeID string

// NewSummaryNodeID generates a time-ordered summary node ID. A UUID is
// used instead of a content hash so that distinct summaries with
// identical text never collide.
func NewSummaryNodeID() SummaryNodeID {
	return SummaryNodeID("summ_" + uuid.Must(uuid.NewV7()).String())
}

// GraphEntity is an entity node as returned by graph queries, with
// aggregate mention information.
type GraphEntity struct {
	Name         string
	Kind         types.EntityKind
	MentionCount int
	Sentiments   []types.Sentiment
}
