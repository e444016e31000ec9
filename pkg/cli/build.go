package cli

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/insight-lab/mnemosyne/pkg/agent"
	"github.com/insight-lab/mnemosyne/pkg/agent/tool/core"
	"github.com/insight-lab/mnemosyne/pkg/cli/config"
	"github.com/insight-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/insight-lab/mnemosyne/pkg/service/aggregator"
	"github.com/insight-lab/mnemosyne/pkg/service/chunker"
	"github.com/insight-lab/mnemosyne/pkg/service/summarizer"
	"github.com/insight-lab/mnemosyne/pkg/usecase"
)

// buildUseCases wires the pipeline services with tuning from the
// application config applied on top of the built-in defaults.
func buildUseCases(repo interfaces.Repository, llmClient gollem.LLMClient, appCfg *config.AppConfig) (*usecase.UseCases, error) {
	var chunkerOpts []chunker.Option
	if appCfg.Chunking.Size > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithChunkSize(appCfg.Chunking.Size))
	}
	if appCfg.Chunking.Overlap > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithOverlap(appCfg.Chunking.Overlap))
	}

	var sumOpts []summarizer.Option
	if appCfg.Summarizer.BatchSize > 0 {
		sumOpts = append(sumOpts, summarizer.WithBatchSize(appCfg.Summarizer.BatchSize))
	}
	if appCfg.Summarizer.Concurrency > 0 {
		sumOpts = append(sumOpts, summarizer.WithConcurrency(appCfg.Summarizer.Concurrency))
	}
	if appCfg.Summarizer.ThemeCount > 0 {
		sumOpts = append(sumOpts, summarizer.WithThemeCount(appCfg.Summarizer.ThemeCount))
	}

	sum, err := summarizer.New(llmClient, sumOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create summarizer")
	}

	var aggOpts []aggregator.Option
	if appCfg.Aggregator.ScrollLimit > 0 {
		aggOpts = append(aggOpts, aggregator.WithScrollLimit(appCfg.Aggregator.ScrollLimit))
	}
	agg := aggregator.New(repo, sum, aggOpts...)

	var agentOpts []agent.Option
	if appCfg.Agent.MaxSteps > 0 {
		agentOpts = append(agentOpts, agent.WithMaxSteps(appCfg.Agent.MaxSteps))
	}
	agentSvc := agent.New(llmClient, core.New(repo, llmClient, agg), agentOpts...)

	return usecase.New(repo, llmClient,
		usecase.WithChunker(chunker.New(chunkerOpts...)),
		usecase.WithSummarizer(sum),
		usecase.WithAggregator(agg),
		usecase.WithAgent(agentSvc),
	)
}
