package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"

	"github.com/insight-lab/mnemosyne/pkg/cli/config"
	"github.com/insight-lab/mnemosyne/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdChat() *cli.Command {
	var showTrace bool
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "trace",
			Usage:       "Print the agent's intermediate reasoning trace",
			Destination: &showTrace,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:      "chat",
		Usage:     "Ask a question over the stored feedback memory",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if question == "" {
				return goerr.New("question argument is required")
			}

			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load tuning configuration")
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

			result, err := uc.Chat(ctx, question)
			if err != nil {
				return err
			}

			if showTrace {
				dim := color.New(color.FgHiBlack)
				for i, msg := range result.Trace {
					dim.Printf("[%d] %s\n", i+1, msg)
				}
				fmt.Println()
			}

			color.New(color.FgCyan, color.Bold).Println("Answer:")
			fmt.Println(result.Answer)
			return nil
		},
	}
}
