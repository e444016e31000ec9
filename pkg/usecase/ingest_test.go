package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	"github.com/insight-lab/mnemosyne/pkg/domain/model"
	"github.com/insight-lab/mnemosyne/pkg/domain/types"
	"github.com/insight-lab/mnemosyne/pkg/repository/memory"
	"github.com/insight-lab/mnemosyne/pkg/usecase"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"batch summary"}}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, _ ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, _ ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) History() (*gollem.History, error) { return nil, nil }

func (s *mockLLMSession) AppendHistory(*gollem.History) error { return nil }

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
	embedded     [][]string
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	c.embedded = append(c.embedded, input)
	out := make([][]float64, len(input))
	for i := range input {
		vec := make([]float64, dimension)
		vec[i%dimension] = 1
		out[i] = vec
	}
	return out, nil
}

// analysisClient answers structured-analysis sessions with a JSON
// payload and everything else with plain text.
func analysisClient(json string) *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{json}}, nil
				},
			}, nil
		},
	}
}

func testItems() []model.FeedbackItem {
	rating := 2.0
	return []model.FeedbackItem{
		{
			Source:    "app-store",
			Content:   "Sync keeps failing between my laptop and phone. " + strings.Repeat("It drops changes constantly. ", 40),
			Timestamp: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
			Rating:    &rating,
			Metadata:  map[string]any{"user": "carol"},
		},
		{
			Source:    "survey",
			Content:   "Billing page shows the wrong currency.",
			Timestamp: time.Date(2026, 4, 2, 11, 0, 0, 0, time.UTC),
		},
	}
}

func TestIngest_EndToEnd(t *testing.T) {
	repo := memory.New()
	llm := analysisClient(`{"themes":["sync","billing"],"critical_issues":["sync"],"sentiment":"negative"}`)

	uc, err := usecase.New(repo, llm)
	gt.NoError(t, err).Required()

	result, err := uc.Ingest(context.Background(), testItems())
	gt.NoError(t, err).Required()

	gt.Number(t, result.ChunkCount).Greater(1)
	gt.Value(t, result.SummaryCount).Equal(1)
	gt.Array(t, result.Themes).Has("sync")
	gt.Array(t, result.CriticalIssues).Has("sync")
	gt.Value(t, result.HierarchicalSummary).NotEqual("")
	gt.Number(t, result.EntitiesStored).Greater(0)

	// Exactly one summary record lands in the vector layer.
	summaries, err := repo.Vector().ScrollByMetadata(context.Background(), "type", types.RecordTypeSummary.String(), 100)
	gt.NoError(t, err).Required()
	gt.Array(t, summaries).Length(1).Required()
	gt.Value(t, summaries[0].Level).Equal(1)

	// Chunks carry level 0.
	chunks, err := repo.Vector().ScrollByMetadata(context.Background(), "type", types.RecordTypeChunk.String(), 100)
	gt.NoError(t, err).Required()
	gt.Value(t, len(chunks)).Equal(result.ChunkCount)

	// Graph layer received the extracted entities.
	entities, err := repo.Graph().QueryEntities(context.Background(), "", 100)
	gt.NoError(t, err).Required()
	gt.Number(t, len(entities)).Greater(0)
}

func TestIngest_SingleEmbeddingCall(t *testing.T) {
	repo := memory.New()
	llm := analysisClient(`{"themes":["a"],"critical_issues":[],"sentiment":"neutral"}`)

	uc, err := usecase.New(repo, llm)
	gt.NoError(t, err).Required()

	_, err = uc.Ingest(context.Background(), testItems())
	gt.NoError(t, err).Required()

	// All chunk and summary texts go through one embedding request.
	gt.Array(t, llm.embedded).Length(1)
}

func TestIngest_EmptyBatchRejected(t *testing.T) {
	repo := memory.New()
	uc, err := usecase.New(repo, &mockLLMClient{})
	gt.NoError(t, err).Required()

	_, err = uc.Ingest(context.Background(), nil)
	gt.Error(t, err)

	_, err = uc.Ingest(context.Background(), []model.FeedbackItem{{Source: "x", Content: "   "}})
	gt.Error(t, err)
}

func TestChat_AnswersViaAgent(t *testing.T) {
	repo := memory.New()
	llm := &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{"Sync reliability is the top complaint."}}, nil
				},
			}, nil
		},
	}

	uc, err := usecase.New(repo, llm)
	gt.NoError(t, err).Required()

	result, err := uc.Chat(context.Background(), "What is the top complaint?")
	gt.NoError(t, err).Required()
	gt.Value(t, result.Answer).Equal("Sync reliability is the top complaint.")

	_, err = uc.Chat(context.Background(), "   ")
	gt.Error(t, err)
}

func TestGlobalThemes_NoData(t *testing.T) {
	repo := memory.New()
	uc, err := usecase.New(repo, &mockLLMClient{})
	gt.NoError(t, err).Required()

	report, err := uc.GlobalThemes(context.Background())
	gt.NoError(t, err).Required()
	gt.Value(t, report).Equal("No data.")
}
