package model

import "github.com/insight-lab/mnemosyne/pkg/domain/types"

// Analysis is the structured output of the summarizer over a feedback
// batch: extracted themes, the labeled critical subset, a coarse
// sentiment label, and the root of the reduction tree.
type Analysis struct {
	Themes              []string
	CriticalIssues      []string
	Sentiment           types.Sentiment
	HierarchicalSummary string
	SourceCount         int
}

// Entities derives graph entities from the analysis: themes as Theme
// mentions with neutral sentiment, critical issues as Issue mentions
// with negative sentiment. Theme is outside the graph label allow-list
// and lands under the fallback label at storage time.
func (a *Analysis) Entities() []*Entity {
	entities := make([]*Entity, 0, len(a.Themes)+len(a.CriticalIssues))
	for _, theme := range a.Themes {
		entities = append(entities, &Entity{
			Name:      theme,
			Kind:      "Theme",
			Sentiment: types.SentimentNeutral,
		})
	}
	for _, issue := range a.CriticalIssues {
		entities = append(entities, &Entity{
			Name:      issue,
			Kind:      types.EntityKindIssue,
			Sentiment: types.SentimentNegative,
		})
	}
	return entities
}

// SummaryRecord builds the vector-layer record for the hierarchical
// summary of an analyzed batch.
func (a *Analysis) SummaryRecord(embedding []float32) *MemoryRecord {
	return &MemoryRecord{
		ID:        NewRecordID(),
		Embedding: embedding,
		Payload: RecordPayload{
			Content: a.HierarchicalSummary,
			Type:    types.RecordTypeSummary,
			Level:   1,
			Metadata: map[string]any{
				"themes":          a.Themes,
				"critical_issues": a.CriticalIssues,
				"sentiment":       a.Sentiment.String(),
				"total_items":     a.SourceCount,
			},
		},
	}
}
