package memory_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/insight-lab/mnemosyne/pkg/domain/model"
	"github.com/insight-lab/mnemosyne/pkg/domain/types"
	"github.com/insight-lab/mnemosyne/pkg/repository/memory"
)

func chunkRecord(content string, embedding []float32) *model.MemoryRecord {
	return &model.MemoryRecord{
		ID:        model.NewRecordID(),
		Embedding: embedding,
		Payload: model.RecordPayload{
			Content: content,
			Type:    types.RecordTypeChunk,
			Level:   0,
		},
	}
}

func TestVectorSearch_OrderedBySimilarity(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	err := repo.Vector().Upsert(ctx, []*model.MemoryRecord{
		chunkRecord("exact match", []float32{1, 0, 0}),
		chunkRecord("close match", []float32{0.9, 0.1, 0}),
		chunkRecord("unrelated", []float32{0, 0, 1}),
	})
	gt.NoError(t, err).Required()

	hits, err := repo.Vector().Search(ctx, []float32{1, 0, 0}, 2)
	gt.NoError(t, err).Required()

	gt.Array(t, hits).Length(2).Required()
	gt.Value(t, hits[0].Payload.Content).Equal("exact match")
	gt.Value(t, hits[1].Payload.Content).Equal("close match")
	gt.Number(t, hits[0].Score).Greater(hits[1].Score)
}

func TestVectorUpsert_OverwritesByID(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	rec := chunkRecord("original", []float32{1, 0})
	gt.NoError(t, repo.Vector().Upsert(ctx, []*model.MemoryRecord{rec})).Required()

	rec.Payload.Content = "updated"
	gt.NoError(t, repo.Vector().Upsert(ctx, []*model.MemoryRecord{rec})).Required()

	hits, err := repo.Vector().Search(ctx, []float32{1, 0}, 10)
	gt.NoError(t, err).Required()
	gt.Array(t, hits).Length(1).Required()
	gt.Value(t, hits[0].Payload.Content).Equal("updated")
}

func TestVectorUpsert_RejectsMissingEmbedding(t *testing.T) {
	repo := memory.New()

	rec := &model.MemoryRecord{
		ID:      model.NewRecordID(),
		Payload: model.RecordPayload{Content: "no vector", Type: types.RecordTypeChunk},
	}
	gt.Error(t, repo.Vector().Upsert(context.Background(), []*model.MemoryRecord{rec}))
}

func TestScrollByMetadata_FiltersByType(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	summary := &model.MemoryRecord{
		ID:        model.NewRecordID(),
		Embedding: []float32{0.5, 0.5},
		Payload: model.RecordPayload{
			Content: "overall summary",
			Type:    types.RecordTypeSummary,
			Level:   1,
		},
	}
	err := repo.Vector().Upsert(ctx, []*model.MemoryRecord{
		chunkRecord("a chunk", []float32{1, 0}),
		summary,
	})
	gt.NoError(t, err).Required()

	payloads, err := repo.Vector().ScrollByMetadata(ctx, "type", "summary", 100)
	gt.NoError(t, err).Required()
	gt.Array(t, payloads).Length(1).Required()
	gt.Value(t, payloads[0].Content).Equal("overall summary")
}

func TestScrollByMetadata_RespectsLimit(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	records := make([]*model.MemoryRecord, 5)
	for i := range records {
		records[i] = chunkRecord("chunk", []float32{1, 0})
	}
	gt.NoError(t, repo.Vector().Upsert(ctx, records)).Required()

	payloads, err := repo.Vector().ScrollByMetadata(ctx, "type", "chunk", 3)
	gt.NoError(t, err).Required()
	gt.Array(t, payloads).Length(3)
}

func TestGraph_MergesEntitiesByKindAndName(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	entities := []*model.Entity{
		{Name: "slow checkout", Kind: types.EntityKindIssue, Sentiment: types.SentimentNegative},
	}

	err := repo.Graph().StoreSummaryIntelligence(ctx, "summary one", nil, entities)
	gt.NoError(t, err).Required()
	err = repo.Graph().StoreSummaryIntelligence(ctx, "summary two", nil, entities)
	gt.NoError(t, err).Required()

	results, err := repo.Graph().QueryEntities(ctx, "checkout", 10)
	gt.NoError(t, err).Required()

	// One merged node, two mention edges.
	gt.Array(t, results).Length(1).Required()
	gt.Value(t, results[0].Name).Equal("slow checkout")
	gt.Value(t, results[0].Kind).Equal(types.EntityKindIssue)
	gt.Value(t, results[0].MentionCount).Equal(2)
	gt.Array(t, results[0].Sentiments).Length(2)
}

func TestGraph_UnknownKindSanitized(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	entities := []*model.Entity{
		{Name: "odd label", Kind: types.EntityKind("<script>alert(1)</script>"), Sentiment: types.SentimentNeutral},
	}

	gt.NoError(t, repo.Graph().StoreSummaryIntelligence(ctx, "summary", nil, entities)).Required()

	results, err := repo.Graph().QueryEntities(ctx, "odd", 10)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(1).Required()
	gt.Value(t, results[0].Kind).Equal(types.EntityKindFallback)
}

func TestGraph_QueryOrderingAndLimit(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	frequent := []*model.Entity{{Name: "login errors", Kind: types.EntityKindIssue, Sentiment: types.SentimentNegative}}
	rare := []*model.Entity{{Name: "login page design", Kind: types.EntityKindFeature, Sentiment: types.SentimentPositive}}

	gt.NoError(t, repo.Graph().StoreSummaryIntelligence(ctx, "s1", nil, frequent)).Required()
	gt.NoError(t, repo.Graph().StoreSummaryIntelligence(ctx, "s2", nil, frequent)).Required()
	gt.NoError(t, repo.Graph().StoreSummaryIntelligence(ctx, "s3", nil, rare)).Required()

	results, err := repo.Graph().QueryEntities(ctx, "login", 10)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(2).Required()
	gt.Value(t, results[0].Name).Equal("login errors")

	limited, err := repo.Graph().QueryEntities(ctx, "login", 1)
	gt.NoError(t, err).Required()
	gt.Array(t, limited).Length(1)
}

func TestGraph_EmptyQueryMatchesAll(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	gt.NoError(t, repo.Graph().StoreSummaryIntelligence(ctx, "s", nil, []*model.Entity{
		{Name: "alpha", Kind: types.EntityKindProduct, Sentiment: types.SentimentNeutral},
		{Name: "beta", Kind: types.EntityKindFeature, Sentiment: types.SentimentNeutral},
	})).Required()

	results, err := repo.Graph().QueryEntities(ctx, "", 10)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(2)
}
