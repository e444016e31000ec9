package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/insight-lab/mnemosyne/pkg/domain/model"
)

type vectorRepository struct {
	mu      sync.RWMutex
	records map[model.RecordID]*model.MemoryRecord
}

func newVectorRepository() *vectorRepository {
	return &vectorRepository{
		records: make(map[model.RecordID]*model.MemoryRecord),
	}
}

func copyRecord(r *model.MemoryRecord) *model.MemoryRecord {
	copied := &model.MemoryRecord{
		ID:      r.ID,
		Payload: copyPayload(&r.Payload),
	}
	if r.Embedding != nil {
		copied.Embedding = make([]float32, len(r.Embedding))
		copy(copied.Embedding, r.Embedding)
	}
	return copied
}

func copyPayload(p *model.RecordPayload) model.RecordPayload {
	copied := model.RecordPayload{
		Content: p.Content,
		Type:    p.Type,
		Level:   p.Level,
	}
	if p.Metadata != nil {
		copied.Metadata = make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			copied.Metadata[k] = v
		}
	}
	return copied
}

func (r *vectorRepository) Upsert(ctx context.Context, records []*model.MemoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		if rec.ID == "" {
			return goerr.New("record ID is required")
		}
		if len(rec.Embedding) == 0 {
			return goerr.New("record embedding is required", goerr.V("recordID", rec.ID))
		}
		r.records[rec.ID] = copyRecord(rec)
	}

	return nil
}

func (r *vectorRepository) Search(ctx context.Context, vector []float32, limit int) ([]*model.SearchHit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		record *model.MemoryRecord
		score  float64
	}

	var candidates []scored
	for _, rec := range r.records {
		s := cosineSimilarity(vector, rec.Embedding)
		candidates = append(candidates, scored{record: rec, score: s})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}

	hits := make([]*model.SearchHit, limit)
	for i := 0; i < limit; i++ {
		hits[i] = &model.SearchHit{
			Score:   candidates[i].score,
			Payload: copyPayload(&candidates[i].record.Payload),
		}
	}

	return hits, nil
}

func (r *vectorRepository) ScrollByMetadata(ctx context.Context, key, value string, limit int) ([]*model.RecordPayload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payloads := make([]*model.RecordPayload, 0)
	for _, rec := range r.records {
		if len(payloads) >= limit {
			break
		}
		if payloadField(&rec.Payload, key) == value {
			p := copyPayload(&rec.Payload)
			payloads = append(payloads, &p)
		}
	}

	return payloads, nil
}

// payloadField resolves the well-known payload fields plus arbitrary
// metadata keys for equality filtering.
func payloadField(p *model.RecordPayload, key string) string {
	switch key {
	case "type":
		return p.Type.String()
	case "content":
		return p.Content
	case "level":
		return fmt.Sprintf("%d", p.Level)
	default:
		if p.Metadata == nil {
			return ""
		}
		if v, ok := p.Metadata[key]; ok {
			return fmt.Sprintf("%v", v)
		}
		return ""
	}
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
