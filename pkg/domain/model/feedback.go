package model

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/insight-lab/mnemosyne/pkg/domain/types"
)

// FeedbackItem is a normalized piece of customer feedback produced by
// the ingestion boundary. Immutable once created.
type FeedbackItem struct {
	Source    string
	Content   string
	Timestamp time.Time
	Rating    *float64 // 1-5 scale, nil if not applicable
	Metadata  map[string]any
}

// ParentID returns the stable, deterministic identifier shared by all
// chunks derived from this item.
func (f *FeedbackItem) ParentID() string {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s|%s|%s", f.Source, f.Timestamp.UTC().Format(time.RFC3339Nano), f.Content)
	return fmt.Sprintf("%s_%016x", f.Source, h.Sum64())
}

// Chunk is a bounded contiguous span of a feedback item's text.
// Never mutated after creation.
type Chunk struct {
	Content  string
	ParentID string
	Index    int
	Metadata map[string]any
}

// Record builds the vector-layer record for this chunk. Metadata is
// copied with the parent linkage added.
func (c *Chunk) Record(embedding []float32) *MemoryRecord {
	meta := make(map[string]any, len(c.Metadata)+1)
	for k, v := range c.Metadata {
		meta[k] = v
	}
	meta["parent_id"] = c.ParentID
	return &MemoryRecord{
		ID:        NewRecordID(),
		Embedding: embedding,
		Payload: RecordPayload{
			Content:  c.Content,
			Type:     types.RecordTypeChunk,
			Level:    0,
			Metadata: meta,
		},
	}
}

// FeedbackView is the flattened feedback shape consumed by the
// summarizer's Analyze. Built either from FeedbackItems at ingestion
// time or reconstructed from stored summary payloads during global
// aggregation.
type FeedbackView struct {
	Content   string
	Rating    float64
	Source    string
	Timestamp string
}

// ViewsFromItems flattens feedback items for analysis. Missing ratings
// default to 3.0 (scale midpoint).
func ViewsFromItems(items []FeedbackItem) []FeedbackView {
	views := make([]FeedbackView, 0, len(items))
	for _, item := range items {
		rating := 3.0
		if item.Rating != nil {
			rating = *item.Rating
		}
		views = append(views, FeedbackView{
			Content:   item.Content,
			Rating:    rating,
			Source:    item.Source,
			Timestamp: item.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return views
}
