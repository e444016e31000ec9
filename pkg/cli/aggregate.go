package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"

	"github.com/insight-lab/mnemosyne/pkg/cli/config"
	"github.com/insight-lab/mnemosyne/pkg/utils/errutil"
	"github.com/insight-lab/mnemosyne/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdAggregate() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var geminiCfg config.Gemini

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:    "aggregate",
		Aliases: []string{"agg"},
		Usage:   "Produce a global theme report over all stored summaries",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
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

			report, err := uc.GlobalThemes(ctx)
			if err != nil {
				return errutil.Handle(ctx, err, "aggregation failed")
			}

			fmt.Println(report)
			return nil
		},
	}
}
