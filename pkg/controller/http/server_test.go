package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	httpctrl "github.com/insight-lab/mnemosyne/pkg/controller/http"
	"github.com/insight-lab/mnemosyne/pkg/repository/memory"
	"github.com/insight-lab/mnemosyne/pkg/usecase"
)

type mockSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{`{"themes":["sync"],"critical_issues":[],"sentiment":"mixed"}`}}, nil
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
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockSession{}, nil
}

func (c *mockClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	out := make([][]float64, len(input))
	for i := range input {
		vec := make([]float64, dimension)
		vec[0] = 1
		out[i] = vec
	}
	return out, nil
}

func newTestServer(t *testing.T, llm gollem.LLMClient) *httpctrl.Server {
	t.Helper()
	uc, err := usecase.New(memory.New(), llm)
	gt.NoError(t, err).Required()
	srv, err := httpctrl.New(uc)
	gt.NoError(t, err).Required()
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &mockClient{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var body map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	gt.Value(t, body["status"]).Equal(any("ok"))
}

func TestIngestEndpoint(t *testing.T) {
	srv := newTestServer(t, &mockClient{})

	payload := `{"items":[{"source":"app-store","content":"Sync fails constantly","rating":2}]}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(payload)))

	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var body map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	gt.Value(t, body["chunk_count"]).Equal(any(float64(1)))
	gt.Value(t, body["summary_count"]).Equal(any(float64(1)))
}

func TestIngestEndpoint_BadRequest(t *testing.T) {
	srv := newTestServer(t, &mockClient{})

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"items":`},
		{"no items", `{"items":[]}`},
		{"missing content", `{"items":[{"source":"x"}]}`},
		{"bad timestamp", `{"items":[{"content":"ok","timestamp":"yesterday"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(tc.body)))
			gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
		})
	}
}

func TestChatEndpoint(t *testing.T) {
	llm := &mockClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{"Mostly sync problems."}}, nil
				},
			}, nil
		},
	}
	srv := newTestServer(t, llm)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"question":"top complaint?"}`)))

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var body map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	gt.Value(t, body["answer"]).Equal(any("Mostly sync problems."))
}

func TestChatEndpoint_RateLimited(t *testing.T) {
	llm := &mockClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return nil, errors.New("429 Too Many Requests")
				},
			}, nil
		},
	}
	srv := newTestServer(t, llm)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"question":"q"}`)))

	gt.Value(t, rec.Code).Equal(http.StatusTooManyRequests)
}

func TestGlobalThemesEndpoint_NoData(t *testing.T) {
	srv := newTestServer(t, &mockClient{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/global-themes", nil))

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	var body map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	gt.Value(t, body["report"]).Equal(any("No data."))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &mockClient{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/ingest", nil))

	gt.Value(t, rec.Code).Equal(http.StatusNoContent)
	gt.Value(t, rec.Header().Get("Access-Control-Allow-Origin")).Equal("*")
}
