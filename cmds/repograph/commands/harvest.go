package commands

import (
	"context"

	"github.com/gomantics/repograph/api"
	apiharvest "github.com/gomantics/repograph/api/harvest"
	"github.com/gomantics/repograph/config"
	"github.com/gomantics/repograph/domains/contributors"
	"github.com/gomantics/repograph/domains/harvest"
	"github.com/gomantics/repograph/domains/repos"
	"github.com/gomantics/repograph/libs/gitrepo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newHarvestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "harvest [concurrency]",
		Short: "Mirror every pending repository and record commits per contributor",
		Long: `Mirrors every repository without contributor data and counts its commits
per author email. concurrency defaults to harvest.concurrency, or to the
number of CPUs when that is 0.

Exits with status 3 when the git host starts rate limiting.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) > 0 {
				arg = args[0]
			}
			limit := harvest.ResolveConcurrency(arg, int(config.Harvest.Concurrency()))

			opts := []fx.Option{
				fx.Provide(
					newMirrors,
					newHarvester,
					contributors.NewSink,
					newScheduler,
					repos.NewQueue,
				),
				fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, l *zap.Logger, result *jobResult, queue *repos.Queue, sched *harvest.Scheduler) {
					startJob(lc, sd, l, result, "harvest", func(ctx context.Context) error {
						return runHarvest(ctx, l, queue, sched, limit)
					})
				}),
			}

			if config.Server.Enabled() {
				opts = append(opts,
					fx.Provide(func(s *harvest.Scheduler) apiharvest.Tracker { return s }),
					fx.Invoke(api.Run),
				)
			}

			return runApp(cmd.Context(), opts...)
		},
	}
}

func newMirrors(l *zap.Logger) (*gitrepo.Mirrors, error) {
	return gitrepo.NewMirrors(l, config.Harvest.MirrorDir(), gitrepo.ProviderForHost(config.Harvest.Host()))
}

func newHarvester(l *zap.Logger, mirrors *gitrepo.Mirrors) *harvest.Harvester {
	return harvest.NewHarvester(l, mirrors, config.Harvest.CloneTimeout(), config.Harvest.SummarizeTimeout())
}

func newScheduler(l *zap.Logger, h *harvest.Harvester, sink *contributors.Sink, reg *prometheus.Registry) *harvest.Scheduler {
	return harvest.NewScheduler(l, h, sink, reg)
}

func runHarvest(ctx context.Context, l *zap.Logger, queue harvest.Source, sched *harvest.Scheduler, limit int) error {
	report, err := harvest.Harvest(ctx, queue, sched, limit)

	for _, item := range report.Failed {
		l.Warn("not harvested",
			zap.Int64("rank", item.Ref.Rank),
			zap.String("owner", item.Ref.Owner),
			zap.String("project", item.Ref.Project),
			zap.Error(item.Err),
		)
	}

	l.Info("harvest summary",
		zap.Int("done", report.Done),
		zap.Int("failed", len(report.Failed)),
		zap.Int("abandoned", report.Abandoned),
		zap.Int("undispatched", report.Undispatched),
	)

	return err
}
