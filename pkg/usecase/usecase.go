package usecase

import (
	"github.com/m-mizutani/gollem"
	"github.com/insight-lab/mnemosyne/pkg/agent"
	"github.com/insight-lab/mnemosyne/pkg/agent/tool/core"
	"github.com/insight-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/insight-lab/mnemosyne/pkg/service/aggregator"
	"github.com/insight-lab/mnemosyne/pkg/service/chunker"
	"github.com/insight-lab/mnemosyne/pkg/service/summarizer"
)

type UseCases struct {
	repo       interfaces.Repository
	llmClient  gollem.LLMClient
	chunker    *chunker.Chunker
	summarizer summarizer.Service
	aggregator *aggregator.Service
	agent      *agent.Agent
}

type Option func(*UseCases)

// WithChunker replaces the default chunker, e.g. with tuned size and
// overlap from configuration.
func WithChunker(c *chunker.Chunker) Option {
	return func(uc *UseCases) {
		uc.chunker = c
	}
}

// WithSummarizer replaces the default summarizer service.
func WithSummarizer(s summarizer.Service) Option {
	return func(uc *UseCases) {
		uc.summarizer = s
	}
}

// WithAggregator replaces the default global aggregator.
func WithAggregator(a *aggregator.Service) Option {
	return func(uc *UseCases) {
		uc.aggregator = a
	}
}

// WithAgent replaces the default reasoning agent.
func WithAgent(a *agent.Agent) Option {
	return func(uc *UseCases) {
		uc.agent = a
	}
}

func New(repo interfaces.Repository, llmClient gollem.LLMClient, opts ...Option) (*UseCases, error) {
	uc := &UseCases{
		repo:      repo,
		llmClient: llmClient,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.chunker == nil {
		uc.chunker = chunker.New()
	}
	if uc.summarizer == nil {
		sum, err := summarizer.New(llmClient)
		if err != nil {
			return nil, err
		}
		uc.summarizer = sum
	}
	if uc.aggregator == nil {
		uc.aggregator = aggregator.New(repo, uc.summarizer)
	}
	if uc.agent == nil {
		tools := core.New(repo, llmClient, uc.aggregator)
		uc.agent = agent.New(llmClient, tools)
	}

	return uc, nil
}
