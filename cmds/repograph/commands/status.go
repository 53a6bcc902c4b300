package commands

import (
	"context"

	"github.com/gomantics/repograph/db"
	"github.com/gomantics/repograph/domains/status"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show how far each stage has progressed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(),
				fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, l *zap.Logger, result *jobResult, s *db.Store) {
					startJob(lc, sd, l, result, "status", func(ctx context.Context) error {
						sum, err := status.Load(ctx, s)
						if err != nil {
							return err
						}
						return sum.Render(cmd.OutOrStdout())
					})
				}),
			)
		},
	}
}
