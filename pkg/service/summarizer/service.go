package summarizer

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/insight-lab/mnemosyne/pkg/domain/model"
	"github.com/insight-lab/mnemosyne/pkg/domain/types"
	"github.com/insight-lab/mnemosyne/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

//go:embed prompt/summarize_batch.md
var summarizeBatchPromptTmpl string

//go:embed prompt/analyze_system.md
var analyzeSystemPrompt string

var summarizeBatchPrompt = template.Must(template.New("summarize_batch").Parse(summarizeBatchPromptTmpl))

const (
	// DefaultBatchSize is the maximum number of texts reduced by one
	// summarization call
	DefaultBatchSize = 5
	// DefaultConcurrency bounds parallel summarization calls within
	// one reduction round
	DefaultConcurrency = 4
	// DefaultThemeCount is the number of themes extracted by the
	// deterministic fallback
	DefaultThemeCount = 5
)

// Service reduces feedback into hierarchical summaries and structured
// analyses.
type Service interface {
	// Reduce compresses texts into a single hierarchical summary via
	// batched, multi-round reduction. Empty input yields an empty
	// result; a single text is returned unchanged without any model
	// call.
	Reduce(ctx context.Context, texts []string, batchSize int) (string, error)

	// Analyze derives themes, critical issues, a sentiment label and
	// the hierarchical summary for a feedback batch. Model failures
	// fall back to a deterministic analysis; rate-limit signals are
	// tagged and propagated for caller visibility.
	Analyze(ctx context.Context, items []model.FeedbackView) (*model.Analysis, error)
}

type client struct {
	llmClient   gollem.LLMClient
	batchSize   int
	concurrency int
	themeCount  int
}

type Option func(*client)

// WithBatchSize sets the reduction batch size used by Analyze
func WithBatchSize(size int) Option {
	return func(c *client) {
		if size > 0 {
			c.batchSize = size
		}
	}
}

// WithConcurrency bounds parallel summarization calls within a round
func WithConcurrency(n int) Option {
	return func(c *client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithThemeCount sets how many fallback themes are extracted
func WithThemeCount(n int) Option {
	return func(c *client) {
		if n > 0 {
			c.themeCount = n
		}
	}
}

// New creates a new summarizer Service with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &client{
		llmClient:   llmClient,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
		themeCount:  DefaultThemeCount,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) Reduce(ctx context.Context, texts []string, batchSize int) (string, error) {
	if batchSize <= 0 {
		batchSize = c.batchSize
	}

	level := 1
	for {
		// Base case, checked on every round
		if len(texts) == 0 {
			return "", nil
		}
		if len(texts) == 1 {
			return texts[0], nil
		}

		reduced, err := c.reduceRound(ctx, texts, batchSize, level)
		if err != nil {
			// A failed round aborts the whole reduction; partial
			// hierarchies are never returned.
			return "", goerr.Wrap(err, "reduction round failed",
				goerr.V("level", level), goerr.V("inputs", len(texts)),
			)
		}

		logging.From(ctx).Debug("reduction round complete",
			"level", level, "in", len(texts), "out", len(reduced))

		texts = reduced
		level++
	}
}

// reduceRound summarizes contiguous batches of at most batchSize
// texts, preserving order. Batches within a round are independent and
// run concurrently; rounds are strictly sequential.
func (c *client) reduceRound(ctx context.Context, texts []string, batchSize, level int) ([]string, error) {
	batchCount := (len(texts) + batchSize - 1) / batchSize
	summaries := make([]string, batchCount)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.concurrency)

	for i := 0; i < batchCount; i++ {
		start := i * batchSize
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]
		idx := i

		eg.Go(func() error {
			summary, err := c.summarizeBatch(ctx, batch, level)
			if err != nil {
				return err
			}
			summaries[idx] = summary
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (c *client) summarizeBatch(ctx context.Context, batch []string, level int) (string, error) {
	var buf bytes.Buffer
	if err := summarizeBatchPrompt.Execute(&buf, map[string]any{
		"Level":     level,
		"PrevLevel": level - 1,
		"Feedback":  strings.Join(batch, "\n---\n"),
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render summarize prompt")
	}

	session, err := c.llmClient.NewSession(ctx)
	if err != nil {
		return "", types.WrapLLMError(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buf.String()))
	if err != nil {
		return "", types.WrapLLMError(err, "failed to summarize batch")
	}
	if len(resp.Texts) == 0 {
		return "", goerr.New("empty summarization response")
	}

	return strings.TrimSpace(strings.Join(resp.Texts, "\n")), nil
}

func (c *client) Analyze(ctx context.Context, items []model.FeedbackView) (*model.Analysis, error) {
	if len(items) == 0 {
		return &model.Analysis{Sentiment: types.SentimentNeutral}, nil
	}

	texts := make([]string, 0, len(items))
	for _, item := range items {
		texts = append(texts, item.Content)
	}

	summary, err := c.Reduce(ctx, texts, c.batchSize)
	if err != nil {
		if types.IsRateLimited(err) {
			return nil, err
		}
		logging.From(ctx).Warn("hierarchical reduction failed, using fallback analysis", "error", err.Error())
		return c.fallbackAnalysis(texts), nil
	}

	analysis, err := c.structuredAnalysis(ctx, items, summary)
	if err != nil {
		if types.IsRateLimited(err) {
			return nil, err
		}
		logging.From(ctx).Warn("structured analysis failed, using fallback analysis", "error", err.Error())
		return c.fallbackAnalysis(texts), nil
	}

	return analysis, nil
}

// structuredAnalysis asks the model for a typed JSON result instead of
// letting it run code: the toolbox framing lives in the system prompt,
// the output is constrained by a response schema.
func (c *client) structuredAnalysis(ctx context.Context, items []model.FeedbackView, summary string) (*model.Analysis, error) {
	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(analysisResponseSchema()),
		gollem.WithSessionSystemPrompt(analyzeSystemPrompt),
	)
	if err != nil {
		return nil, types.WrapLLMError(err, "failed to create analysis session")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hierarchical summary of the batch:\n%s\n\nFeedback items (%d):\n", summary, len(items))
	for _, item := range items {
		fmt.Fprintf(&buf, "- [%s, rating %.1f, %s] %s\n", item.Source, item.Rating, item.Timestamp, item.Content)
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buf.String()))
	if err != nil {
		return nil, types.WrapLLMError(err, "failed to generate analysis")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty analysis response")
	}

	var parsed struct {
		Themes         []string `json:"themes"`
		CriticalIssues []string `json:"critical_issues"`
		Sentiment      string   `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(resp.Texts[0]), &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse analysis response", goerr.V("response", resp.Texts[0]))
	}

	return &model.Analysis{
		Themes:              parsed.Themes,
		CriticalIssues:      parsed.CriticalIssues,
		Sentiment:           types.Sentiment(parsed.Sentiment).Normalize(),
		HierarchicalSummary: summary,
		SourceCount:         len(items),
	}, nil
}

// fallbackAnalysis is the deterministic availability guarantee: no
// external dependency, always succeeds.
func (c *client) fallbackAnalysis(texts []string) *model.Analysis {
	themes := extractThemes(texts, c.themeCount)

	issues := themes
	if len(issues) > 3 {
		issues = issues[:3]
	}

	top := themes
	if len(top) > 3 {
		top = top[:3]
	}

	return &model.Analysis{
		Themes:              themes,
		CriticalIssues:      issues,
		Sentiment:           types.SentimentMixed,
		HierarchicalSummary: fmt.Sprintf("Analysis of %d items. Top themes: %s", len(texts), strings.Join(top, ", ")),
		SourceCount:         len(texts),
	}
}

func analysisResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "FeedbackAnalysisResponse",
		Description: "Structured analysis of a customer feedback batch",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"themes": {
				Type:        gollem.TypeArray,
				Description: "Common themes across the feedback, most frequent first",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
				Required:    true,
			},
			"critical_issues": {
				Type:        gollem.TypeArray,
				Description: "Themes that represent actionable problems",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
				Required:    true,
			},
			"sentiment": {
				Type:        gollem.TypeString,
				Description: "Coarse sentiment: positive, negative, neutral or mixed",
				Required:    true,
			},
		},
	}
}
