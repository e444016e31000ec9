package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/insight-lab/mnemosyne/pkg/domain/model"
	"github.com/insight-lab/mnemosyne/pkg/utils/logging"
)

// IngestResult reports what one feedback batch produced across the
// memory layers.
type IngestResult struct {
	ChunkCount          int      `json:"chunk_count"`
	SummaryCount        int      `json:"summary_count"`
	Themes              []string `json:"themes"`
	CriticalIssues      []string `json:"critical_issues"`
	HierarchicalSummary string   `json:"hierarchical_summary"`
	EntitiesStored      int      `json:"entities_stored"`
}

// Ingest runs the full memory-construction pipeline for one feedback
// batch: chunking, batch analysis, embedding, vector upsert and graph
// enrichment. Graph failures are logged and do not fail the batch;
// vector failures do.
func (uc *UseCases) Ingest(ctx context.Context, items []model.FeedbackItem) (*IngestResult, error) {
	if len(items) == 0 {
		return nil, goerr.New("feedback batch is empty")
	}

	chunks := uc.chunker.Split(items)
	if len(chunks) == 0 {
		return nil, goerr.New("feedback batch has no content", goerr.V("items", len(items)))
	}

	analysis, err := uc.summarizer.Analyze(ctx, model.ViewsFromItems(items))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to analyze feedback batch")
	}

	// One embedding call covers every chunk plus the summary.
	texts := make([]string, 0, len(chunks)+1)
	for _, ch := range chunks {
		texts = append(texts, ch.Content)
	}
	hasSummary := analysis.HierarchicalSummary != ""
	if hasSummary {
		texts = append(texts, analysis.HierarchicalSummary)
	}

	embeddings, err := uc.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embeddings", goerr.V("texts", len(texts)))
	}
	if len(embeddings) != len(texts) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("expected", len(texts)), goerr.V("actual", len(embeddings)))
	}

	records := make([]*model.MemoryRecord, 0, len(texts))
	for i := range chunks {
		records = append(records, chunks[i].Record(toFloat32(embeddings[i])))
	}

	result := &IngestResult{
		ChunkCount:          len(chunks),
		Themes:              analysis.Themes,
		CriticalIssues:      analysis.CriticalIssues,
		HierarchicalSummary: analysis.HierarchicalSummary,
	}

	if hasSummary {
		records = append(records, analysis.SummaryRecord(toFloat32(embeddings[len(embeddings)-1])))
		result.SummaryCount = 1
	}

	if err := uc.repo.Vector().Upsert(ctx, records); err != nil {
		return nil, goerr.Wrap(err, "failed to store memory records", goerr.V("records", len(records)))
	}

	if hasSummary {
		entities := analysis.Entities()
		if err := uc.repo.Graph().StoreSummaryIntelligence(ctx, analysis.HierarchicalSummary, batchMeta(items), entities); err != nil {
			// Graph enrichment is best effort: the vector layer already
			// holds the batch.
			logging.From(ctx).Warn("graph enrichment failed", "error", err.Error())
		} else {
			result.EntitiesStored = len(entities)
		}
	}

	logging.From(ctx).Info("ingested feedback batch",
		"items", len(items),
		"chunks", result.ChunkCount,
		"summaries", result.SummaryCount,
		"entities", result.EntitiesStored,
	)

	return result, nil
}

// batchMeta is the metadata attached to the batch summary in the
// graph layer, taken from the first item carrying any.
func batchMeta(items []model.FeedbackItem) map[string]any {
	for _, item := range items {
		if len(item.Metadata) > 0 {
			return item.Metadata
		}
	}
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
