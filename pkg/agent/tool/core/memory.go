package core

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/insight-lab/mnemosyne/pkg/agent/tool"
	"github.com/insight-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/insight-lab/mnemosyne/pkg/domain/model"
	"github.com/insight-lab/mnemosyne/pkg/service/aggregator"
)

// searchVectorMemoryTool retrieves raw chunks and summaries by
// semantic similarity
type searchVectorMemoryTool struct {
	repo      interfaces.Repository
	llmClient gollem.LLMClient
}

func (t *searchVectorMemoryTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__search_vector_memory",
		Description: "Search stored feedback chunks and summaries using semantic (vector) similarity for the given query",
		Parameters: map[string]*gollem.Parameter{
			"query": {
				Type:        gollem.TypeString,
				Description: "Search query text",
				Required:    true,
			},
			"limit": {
				Type:        gollem.TypeInteger,
				Description: "Maximum number of results to return (default: 5)",
				Required:    false,
			},
		},
	}
}

func (t *searchVectorMemoryTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	tool.Update(ctx, fmt.Sprintf("Searching vector memory: %s", query))

	limit := 5
	if v, err := extractInt64(args, "limit"); err == nil && v > 0 {
		limit = int(v)
	}

	embeddings, err := t.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, []string{query})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embedding for search query",
			goerr.V("query", query),
		)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("embedding generation returned empty result")
	}

	embedding := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		embedding[i] = float32(v)
	}

	hits, err := t.repo.Vector().Search(ctx, embedding, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search vector memory", goerr.V("limit", limit))
	}

	items := make([]map[string]any, len(hits))
	for i, hit := range hits {
		items[i] = map[string]any{
			"score":   hit.Score,
			"content": hit.Payload.Content,
			"type":    hit.Payload.Type.String(),
			"level":   hit.Payload.Level,
		}
	}

	return map[string]any{
		"count":   len(items),
		"results": items,
	}, nil
}

// queryGraphMemoryTool looks up extracted entities and their mention
// relationships
type queryGraphMemoryTool struct {
	repo interfaces.Repository
}

func (t *queryGraphMemoryTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__query_graph_memory",
		Description: "Query the knowledge graph for extracted entities (themes, issues, features, products) matching the query, with mention counts and sentiments",
		Parameters: map[string]*gollem.Parameter{
			"query": {
				Type:        gollem.TypeString,
				Description: "Entity name to look up (substring match; empty returns the most mentioned entities)",
				Required:    false,
			},
			"limit": {
				Type:        gollem.TypeInteger,
				Description: "Maximum number of entities to return (default: 10)",
				Required:    false,
			},
		},
	}
}

func (t *queryGraphMemoryTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, _ := args["query"].(string)

	tool.Update(ctx, fmt.Sprintf("Querying graph memory: %q", query))

	limit := 10
	if v, err := extractInt64(args, "limit"); err == nil && v > 0 {
		limit = int(v)
	}

	entities, err := t.repo.Graph().QueryEntities(ctx, query, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query graph memory", goerr.V("query", query))
	}

	items := make([]map[string]any, len(entities))
	for i, e := range entities {
		sentiments := make([]string, len(e.Sentiments))
		for j, s := range e.Sentiments {
			sentiments[j] = s.String()
		}
		items[i] = map[string]any{
			"name":       e.Name,
			"kind":       e.Kind.String(),
			"mentions":   e.MentionCount,
			"sentiments": sentiments,
		}
	}

	return map[string]any{
		"count":    len(items),
		"entities": items,
	}, nil
}

// fetchGlobalThemesTool runs the cross-batch aggregation
type fetchGlobalThemesTool struct {
	agg *aggregator.Service
}

func (t *fetchGlobalThemesTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "core__fetch_global_themes",
		Description: "Fetch the global theme report aggregated across all previously ingested feedback batches",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

func (t *fetchGlobalThemesTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	tool.Update(ctx, "Fetching global themes")

	report, err := t.agg.Run(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run global aggregation")
	}

	return map[string]any{
		"report": report,
	}, nil
}

// extractInt64 reads an integer argument that may arrive as several
// numeric types depending on the LLM provider's JSON decoding.
func extractInt64(args map[string]any, key string) (int64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument: %s", key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("argument %s is not an integer", key)
	}
}
