package aggregator

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/insight-lab/mnemosyne/pkg/domain/interfaces"
	"github.com/insight-lab/mnemosyne/pkg/domain/model"
	"github.com/insight-lab/mnemosyne/pkg/domain/types"
	"github.com/insight-lab/mnemosyne/pkg/service/summarizer"
	"github.com/insight-lab/mnemosyne/pkg/utils/logging"
)

// NoDataReport is returned when no stored summaries exist. Callers
// must treat it as "insufficient data", not as an error.
const NoDataReport = "No data."

// DefaultScrollLimit caps how many stored summaries one aggregation
// reads back.
const DefaultScrollLimit = 100

// Service re-runs the recursive summarizer over previously stored
// top-level summaries to produce a cross-batch theme report.
type Service struct {
	repo        interfaces.Repository
	summarizer  summarizer.Service
	scrollLimit int
}

type Option func(*Service)

// WithScrollLimit caps the number of summaries fetched per aggregation
func WithScrollLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.scrollLimit = limit
		}
	}
}

func New(repo interfaces.Repository, sum summarizer.Service, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		summarizer:  sum,
		scrollLimit: DefaultScrollLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches all stored summary records, reconstructs a feedback view
// from their payloads, and re-analyzes the set into a global theme
// report.
func (s *Service) Run(ctx context.Context) (string, error) {
	payloads, err := s.repo.Vector().ScrollByMetadata(ctx, "type", types.RecordTypeSummary.String(), s.scrollLimit)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch stored summaries")
	}

	if len(payloads) == 0 {
		logging.From(ctx).Info("no stored summaries to aggregate")
		return NoDataReport, nil
	}

	logging.From(ctx).Info("aggregating stored summaries", "count", len(payloads))

	views := make([]model.FeedbackView, 0, len(payloads))
	for _, p := range payloads {
		views = append(views, viewFromPayload(p))
	}

	analysis, err := s.summarizer.Analyze(ctx, views)
	if err != nil {
		return "", goerr.Wrap(err, "failed to analyze stored summaries")
	}

	return analysis.HierarchicalSummary, nil
}

// viewFromPayload rebuilds a feedback-item-shaped view from a stored
// summary payload, defaulting the fields the payload does not carry.
func viewFromPayload(p *model.RecordPayload) model.FeedbackView {
	view := model.FeedbackView{
		Content: p.Content,
		Rating:  3.0,
		Source:  "summary-store",
	}
	if p.Metadata != nil {
		if r, ok := p.Metadata["rating"].(float64); ok {
			view.Rating = r
		}
		if src, ok := p.Metadata["source"].(string); ok && src != "" {
			view.Source = src
		}
		if ts, ok := p.Metadata["timestamp"]; ok {
			view.Timestamp = fmt.Sprintf("%v", ts)
		}
	}
	return view
}
