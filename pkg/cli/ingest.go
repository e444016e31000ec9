package cli

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/insight-lab/mnemosyne/pkg/cli/config"
	"github.com/insight-lab/mnemosyne/pkg/domain/model"
	"github.com/insight-lab/mnemosyne/pkg/utils/errutil"
	"github.com/insight-lab/mnemosyne/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type feedbackFileItem struct {
	Source    string         `json:"source"`
	Content   string         `json:"content"`
	Timestamp string         `json:"timestamp,omitempty"`
	Rating    *float64       `json:"rating,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func cmdIngest() *cli.Command {
	var inputPath string
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to a JSON file containing feedback items (required)",
			Required:    true,
			Destination: &inputPath,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:  "ingest",
		Usage: "Ingest a feedback batch from a JSON file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load tuning configuration")
			}

			items, err := loadFeedbackFile(inputPath)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}

			uc, err := buildUseCases(repo, llmClient, &appCfg)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize use cases")
			}

			result, err := uc.Ingest(ctx, items)
			if err != nil {
				return errutil.Handle(ctx, goerr.Wrap(err, "ingestion failed", goerr.V("input", inputPath)), "ingest command failed")
			}

			logging.Default().Info("Ingestion completed",
				"items", len(items),
				"chunks", result.ChunkCount,
				"summaries", result.SummaryCount,
				"entities", result.EntitiesStored,
				"themes", result.Themes,
			)
			return nil
		},
	}
}

// loadFeedbackFile reads feedback items from a JSON array file. Items
// without a timestamp use the current time.
func loadFeedbackFile(path string) ([]model.FeedbackItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
	}

	var fileItems []feedbackFileItem
	if err := json.Unmarshal(data, &fileItems); err != nil {
		return nil, goerr.Wrap(err, "failed to parse input file", goerr.V("path", path))
	}
	if len(fileItems) == 0 {
		return nil, goerr.New("input file contains no items", goerr.V("path", path))
	}

	items := make([]model.FeedbackItem, 0, len(fileItems))
	for i, fi := range fileItems {
		if fi.Content == "" {
			return nil, goerr.New("item content is required", goerr.V("index", i))
		}

		ts := time.Now().UTC()
		if fi.Timestamp != "" {
			parsed, err := time.Parse(time.RFC3339, fi.Timestamp)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid item timestamp", goerr.V("index", i))
			}
			ts = parsed
		}

		source := fi.Source
		if source == "" {
			source = "file"
		}

		items = append(items, model.FeedbackItem{
			Source:    source,
			Content:   fi.Content,
			Timestamp: ts,
			Rating:    fi.Rating,
			Metadata:  fi.Metadata,
		})
	}

	return items, nil
}
