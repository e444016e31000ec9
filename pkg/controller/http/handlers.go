package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/insight-lab/mnemosyne/pkg/domain/model"
	"github.com/insight-lab/mnemosyne/pkg/service/aggregator"
	"github.com/insight-lab/mnemosyne/pkg/utils/async"
	"github.com/insight-lab/mnemosyne/pkg/utils/errutil"
	"github.com/insight-lab/mnemosyne/pkg/utils/safe"
)

type feedbackItemRequest struct {
	Source    string         `json:"source"`
	Content   string         `json:"content"`
	Timestamp string         `json:"timestamp,omitempty"`
	Rating    *float64       `json:"rating,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type ingestRequest struct {
	Items []feedbackItemRequest `json:"items"`
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer string   `json:"answer"`
	Trace  []string `json:"trace"`
}

type themesResponse struct {
	Report      string `json:"report"`
	GeneratedAt string `json:"generated_at,omitempty"`
	Cached      bool   `json:"cached"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "mnemosyne",
		"layers":  []string{"chunker", "summarizer", "vector_memory", "graph_memory", "agent"},
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid ingest request body"), http.StatusBadRequest)
		return
	}

	items, err := itemsFromRequest(req.Items)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	result, err := s.uc.Ingest(r.Context(), items)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, errutil.StatusOf(err))
		return
	}

	// Warm the global theme cache off the request path.
	async.Dispatch(r.Context(), func(ctx context.Context) error {
		return s.refreshReport(ctx)
	})

	writeJSON(r.Context(), w, http.StatusOK, result)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid chat request body"), http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		errutil.HandleHTTP(r.Context(), w, goerr.New("question is required"), http.StatusBadRequest)
		return
	}

	result, err := s.uc.Chat(r.Context(), req.Question)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, errutil.StatusOf(err))
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, chatResponse{
		Answer: result.Answer,
		Trace:  result.Trace,
	})
}

func (s *Server) handleGlobalThemes(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "1"

	s.reportMu.RLock()
	report, reportAt := s.report, s.reportAt
	s.reportMu.RUnlock()

	if refresh || report == "" {
		if err := s.refreshReport(r.Context()); err != nil {
			errutil.HandleHTTP(r.Context(), w, err, errutil.StatusOf(err))
			return
		}
		s.reportMu.RLock()
		report, reportAt = s.report, s.reportAt
		s.reportMu.RUnlock()

		resp := themesResponse{Report: report}
		if report == "" {
			// Nothing stored yet: surface the no-data sentinel rather
			// than an empty report.
			resp.Report = aggregator.NoDataReport
		} else {
			resp.GeneratedAt = reportAt.UTC().Format(time.RFC3339)
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, themesResponse{
		Report:      report,
		GeneratedAt: reportAt.UTC().Format(time.RFC3339),
		Cached:      true,
	})
}

// refreshReport recomputes the global theme report and stores it in
// the cache. The empty-data sentinel is not cached so later ingests
// trigger a real report.
func (s *Server) refreshReport(ctx context.Context) error {
	report, err := s.uc.GlobalThemes(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to refresh global theme report")
	}
	if report == aggregator.NoDataReport {
		return nil
	}

	s.reportMu.Lock()
	s.report = report
	s.reportAt = time.Now()
	s.reportMu.Unlock()
	return nil
}

func itemsFromRequest(reqs []feedbackItemRequest) ([]model.FeedbackItem, error) {
	if len(reqs) == 0 {
		return nil, goerr.New("items are required")
	}

	items := make([]model.FeedbackItem, 0, len(reqs))
	for i, req := range reqs {
		if req.Content == "" {
			return nil, goerr.New("item content is required", goerr.V("index", i))
		}

		ts := time.Now().UTC()
		if req.Timestamp != "" {
			parsed, err := time.Parse(time.RFC3339, req.Timestamp)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid item timestamp", goerr.V("index", i))
			}
			ts = parsed
		}

		source := req.Source
		if source == "" {
			source = "api"
		}

		items = append(items, model.FeedbackItem{
			Source:    source,
			Content:   req.Content,
			Timestamp: ts,
			Rating:    req.Rating,
			Metadata:  req.Metadata,
		})
	}

	return items, nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}
