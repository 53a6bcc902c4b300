package commands

import (
	"context"

	"github.com/gomantics/repograph/config"
	"github.com/gomantics/repograph/domains/harvest"
	"github.com/gomantics/repograph/domains/languages"
	"github.com/gomantics/repograph/libs/ghapi"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newLangsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "langs [concurrency]",
		Short: "Fetch language sizes for every repository lacking them",
		Long: `Fetches the bytes of code per language of every stored repository whose
languages are unknown. Set github.token (REPOGRAPH_GITHUB_TOKEN) to raise
the API quota.

Exits with status 3 when the API quota is exhausted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) > 0 {
				arg = args[0]
			}
			limit := harvest.ResolveConcurrency(arg, int(config.GitHub.Concurrency()))

			return runApp(cmd.Context(),
				fx.Provide(
					ghapi.NewFromConfig,
					func(c *ghapi.Client) languages.Client { return c },
					languages.NewFetcher,
				),
				fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, l *zap.Logger, result *jobResult, f *languages.Fetcher) {
					startJob(lc, sd, l, result, "langs", func(ctx context.Context) error {
						_, err := f.Run(ctx, limit)
						return err
					})
				}),
			)
		},
	}
}
