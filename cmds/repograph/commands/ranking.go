package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gomantics/repograph/db"
	"github.com/gomantics/repograph/domains/repos"
	"github.com/gomantics/repograph/libs/ranking"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newRankingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ranking <start> <stop>",
		Short: "Discover ranked repositories from ranking pages start through stop",
		Long: fmt.Sprintf(`Fetches ranking pages start through stop (inclusive, %d..%d) and stores
every listed repository. Ranks already stored are left untouched.`, ranking.FirstPage, ranking.LastPage),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid start page %q: %w", args[0], err)
			}
			stop, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid stop page %q: %w", args[1], err)
			}
			if start < ranking.FirstPage || stop > ranking.LastPage || start > stop {
				return fmt.Errorf("%w: %d..%d", ranking.ErrInvalidPageRange, start, stop)
			}

			return runApp(cmd.Context(),
				fx.Provide(ranking.NewFromConfig),
				fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, l *zap.Logger, result *jobResult, s *db.Store, client *ranking.Client) {
					startJob(lc, sd, l, result, "ranking", func(ctx context.Context) error {
						found, err := client.FetchPages(ctx, start, stop)
						if err != nil {
							return err
						}

						added, err := repos.SaveRanked(ctx, s, found)
						if err != nil {
							return fmt.Errorf("failed to save ranked repositories: %w", err)
						}

						l.Info("ranking stored",
							zap.Int("pages", stop-start+1),
							zap.Int("found", len(found)),
							zap.Int64("added", added),
						)
						return nil
					})
				}),
			)
		},
	}
}
