package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gomantics/repograph/db"
	"github.com/gomantics/repograph/domains/graph"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newExportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the repository/contributor graph as JSON or GML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := graph.ParseFormat(format)
			if err != nil {
				return err
			}

			return runApp(cmd.Context(),
				fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, l *zap.Logger, result *jobResult, s *db.Store) {
					startJob(lc, sd, l, result, "export", func(ctx context.Context) error {
						return exportGraph(ctx, l, s, f, output, cmd.OutOrStdout())
					})
				}),
			)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(graph.FormatJSON), "output format: json or gml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func exportGraph(ctx context.Context, l *zap.Logger, s *db.Store, f graph.Format, output string, stdout io.Writer) error {
	g, err := graph.Load(ctx, s)
	if err != nil {
		return err
	}

	w := stdout
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", output, err)
		}
		defer file.Close()
		w = file
	}

	if err := g.Write(w, f); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}

	l.Info("graph exported",
		zap.String("format", string(f)),
		zap.Int("repositories", len(g.Repositories)),
		zap.Int("contributors", len(g.Contributors)),
		zap.Int("edges", len(g.Edges)),
	)
	return nil
}
