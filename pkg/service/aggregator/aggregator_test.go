package aggregator_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/insight-lab/mnemosyne/pkg/domain/model"
	"github.com/insight-lab/mnemosyne/pkg/domain/types"
	"github.com/insight-lab/mnemosyne/pkg/repository/memory"
	"github.com/insight-lab/mnemosyne/pkg/service/aggregator"
	"github.com/insight-lab/mnemosyne/pkg/service/summarizer"
)

// mockSession answers every call with a fixed payload
type mockSession struct {
	text string
}

func (s *mockSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return &gollem.Response{Texts: []string{s.text}}, nil
}

func (s *mockSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockSession) Generate(ctx context.Context, input []gollem.Input, _ ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockSession) Stream(ctx context.Context, input []gollem.Input, _ ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockSession) History() (*gollem.History, error) { return nil, nil }

func (s *mockSession) AppendHistory(*gollem.History) error { return nil }

func (s *mockSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

type mockClient struct {
	text string
}

func (c *mockClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return &mockSession{text: c.text}, nil
}

func (c *mockClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func storeSummary(t *testing.T, repo *memory.Memory, content string) {
	t.Helper()
	err := repo.Vector().Upsert(context.Background(), []*model.MemoryRecord{{
		ID:        model.NewRecordID(),
		Embedding: []float32{0.1, 0.2},
		Payload: model.RecordPayload{
			Content: content,
			Type:    types.RecordTypeSummary,
			Level:   1,
			Metadata: map[string]any{
				"sentiment": "mixed",
			},
		},
	}})
	gt.NoError(t, err).Required()
}

func TestAggregator_NoStoredSummaries(t *testing.T) {
	repo := memory.New()
	sum, err := summarizer.New(&mockClient{text: "unused"})
	gt.NoError(t, err).Required()

	svc := aggregator.New(repo, sum)
	report, err := svc.Run(context.Background())
	gt.NoError(t, err).Required()
	gt.Value(t, report).Equal(aggregator.NoDataReport)
}

func TestAggregator_ReportFromStoredSummaries(t *testing.T) {
	repo := memory.New()
	storeSummary(t, repo, "Week 1: users complain about sync")
	storeSummary(t, repo, "Week 2: sync issues persist, new billing complaints")

	llm := &mockClient{text: `{"themes":["sync"],"critical_issues":["sync"],"sentiment":"negative"}`}
	sum, err := summarizer.New(llm)
	gt.NoError(t, err).Required()

	svc := aggregator.New(repo, sum)
	report, err := svc.Run(context.Background())
	gt.NoError(t, err).Required()
	gt.Value(t, report).NotEqual("")
	gt.Value(t, report).NotEqual(aggregator.NoDataReport)
}

func TestAggregator_ScrollLimitApplied(t *testing.T) {
	repo := memory.New()
	for i := 0; i < 5; i++ {
		storeSummary(t, repo, "stored summary")
	}

	llm := &mockClient{text: `{"themes":[],"critical_issues":[],"sentiment":"neutral"}`}
	sum, err := summarizer.New(llm)
	gt.NoError(t, err).Required()

	svc := aggregator.New(repo, sum, aggregator.WithScrollLimit(2))
	report, err := svc.Run(context.Background())
	gt.NoError(t, err).Required()
	gt.Value(t, report).NotEqual(aggregator.NoDataReport)
}
