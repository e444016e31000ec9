// Package core provides the fixed memory-query toolbox exposed to the
// reasoning agent: vector similarity search, graph entity lookup and
// the global theme report.
package core

import (
	"github.com/m-mizutani/gollem"
	"github.com/insight-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/insight-lab/mnemosyne/pkg/service/aggregator"
)

// New builds the memory-query tools for the reasoning agent.
func New(repo interfaces.Repository, llmClient gollem.LLMClient, agg *aggregator.Service) []gollem.Tool {
	return []gollem.Tool{
		&searchVectorMemoryTool{repo: repo, llmClient: llmClient},
		&queryGraphMemoryTool{repo: repo},
		&fetchGlobalThemesTool{agg: agg},
	}
}
