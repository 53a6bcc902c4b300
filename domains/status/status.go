// Package status summarizes how far the pipeline stages have progressed.
package status

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/gomantics/repograph/db"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
)

// Summary holds store-wide totals.
type Summary struct {
	Repositories       int64
	Harvested          int64
	Pending            int64
	LanguagesFetched   int64
	ContributorRows    int64
	MeanContributors   float64
	MedianContributors float64
	MaxContributors    float64
}

// Load computes the summary of the store.
func Load(ctx context.Context, s *db.Store) (Summary, error) {
	counts, err := db.Query1(ctx, s, func(q *db.Queries) (db.CountRepositoryStatusRow, error) {
		return q.CountRepositoryStatus(ctx)
	})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to count repositories: %w", err)
	}

	perRepo, err := db.Query1(ctx, s, func(q *db.Queries) ([]int64, error) {
		return q.ContributorsPerHarvestedRepository(ctx)
	})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to count contributors: %w", err)
	}

	return Summarize(counts, perRepo)
}

// Summarize derives a summary from raw counts and the contributor count of every
// harvested repository.
func Summarize(counts db.CountRepositoryStatusRow, perRepo []int64) (Summary, error) {
	sum := Summary{
		Repositories:     counts.Total,
		Harvested:        counts.Harvested,
		Pending:          counts.Total - counts.Harvested,
		LanguagesFetched: counts.LangsFetched,
		ContributorRows:  counts.ContributorRows,
	}

	if len(perRepo) == 0 {
		return sum, nil
	}

	data := make(stats.Float64Data, len(perRepo))
	for i, n := range perRepo {
		data[i] = float64(n)
	}

	var err error
	if sum.MeanContributors, err = stats.Mean(data); err != nil {
		return Summary{}, err
	}
	if sum.MedianContributors, err = stats.Median(data); err != nil {
		return Summary{}, err
	}
	if sum.MaxContributors, err = stats.Max(data); err != nil {
		return Summary{}, err
	}

	return sum, nil
}

// Render writes the summary as a table.
func (s Summary) Render(w io.Writer) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false

	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRows([]table.Row{
		{"repositories", humanize.Comma(s.Repositories)},
		{"harvested", humanize.Comma(s.Harvested)},
		{"pending", humanize.Comma(s.Pending)},
		{"languages fetched", humanize.Comma(s.LanguagesFetched)},
		{"contributor rows", humanize.Comma(s.ContributorRows)},
		{"contributors per repository (mean)", humanize.FormatFloat("#,###.##", s.MeanContributors)},
		{"contributors per repository (median)", humanize.FormatFloat("#,###.##", s.MedianContributors)},
		{"contributors per repository (max)", humanize.Comma(int64(s.MaxContributors))},
	})

	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}
