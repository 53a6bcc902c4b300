// Package languages records how much code of each language repositories hold.
package languages

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/gomantics/repograph/db"
	"github.com/gomantics/repograph/domains/repos"
	"github.com/gomantics/repograph/libs/ghapi"
	"github.com/gomantics/repograph/pkg/pgconv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Client looks up the language sizes of one repository.
type Client interface {
	Languages(ctx context.Context, owner, project string) (map[string]int, error)
}

// Save replaces the language rows of rank and marks its languages fetched, in one transaction.
func Save(ctx context.Context, s *db.Store, rank int64, langs map[string]int) error {
	names := make([]string, 0, len(langs))
	for lang := range langs {
		names = append(names, lang)
	}
	sort.Strings(names)

	weights := make([]int64, len(names))
	for i, lang := range names {
		weights[i] = int64(langs[lang])
	}

	fetchedAt := time.Now().Unix()

	return s.Tx(ctx, func(q *db.Queries) error {
		if err := q.DeleteRepoLangsByRepo(ctx, rank); err != nil {
			return fmt.Errorf("failed to clear languages of rank %d: %w", rank, err)
		}

		if len(names) > 0 {
			if _, err := q.InsertRepoLangs(ctx, db.InsertRepoLangsParams{
				Repo:    rank,
				Langs:   names,
				Weights: weights,
			}); err != nil {
				return fmt.Errorf("failed to insert languages of rank %d: %w", rank, err)
			}
		}

		n, err := q.MarkLanguagesFetched(ctx, db.MarkLanguagesFetchedParams{
			Rank:           rank,
			LangsFetchedAt: pgconv.ToInt8(pgconv.Ptr(fetchedAt)),
		})
		if err != nil {
			return fmt.Errorf("failed to mark languages of rank %d fetched: %w", rank, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: rank %d", repos.ErrNotFound, rank)
		}
		return nil
	})
}

// ByRepository returns the stored language sizes keyed by rank.
func ByRepository(ctx context.Context, s *db.Store) (map[int64]map[string]int64, error) {
	rows, err := db.Query1(ctx, s, func(q *db.Queries) ([]db.RepoLang, error) {
		return q.ListRepoLangs(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}

	out := make(map[int64]map[string]int64)
	for _, row := range rows {
		if out[row.Repo] == nil {
			out[row.Repo] = make(map[string]int64)
		}
		out[row.Repo][row.Lang] = row.Weight
	}
	return out, nil
}

// Report counts the outcomes of a fetch run.
type Report struct {
	Fetched int64
	Failed  int64
}

// Fetcher fills in languages for every repository lacking them.
type Fetcher struct {
	l      *zap.Logger
	s      *db.Store
	client Client
}

func NewFetcher(l *zap.Logger, s *db.Store, client Client) *Fetcher {
	return &Fetcher{l: l, s: s, client: client}
}

// Run fetches and saves languages with at most limit requests in flight.
// Per-repository failures are logged and left for the next run; a rate limit
// stops the run and is returned.
func (f *Fetcher) Run(ctx context.Context, limit int) (Report, error) {
	refs, err := repos.ListWithoutLanguages(ctx, f.s)
	if err != nil {
		return Report{}, err
	}

	f.l.Info("fetching languages", zap.Int("repositories", len(refs)), zap.Int("concurrency", limit))

	var fetched, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))

	for _, ref := range refs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			l := f.l.With(zap.Int64("rank", ref.Rank), zap.String("repo", ref.String()))

			langs, err := f.client.Languages(gctx, ref.Owner, ref.Project)
			if errors.Is(err, ghapi.ErrRateLimited) {
				return err
			}
			if err != nil {
				failed.Add(1)
				l.Warn("failed to fetch languages", zap.Error(err))
				return nil
			}

			if err := Save(gctx, f.s, ref.Rank, langs); err != nil {
				failed.Add(1)
				l.Warn("failed to save languages", zap.Error(err))
				return nil
			}

			fetched.Add(1)
			l.Debug("languages saved", zap.Int("languages", len(langs)))
			return nil
		})
	}

	err = g.Wait()
	report := Report{Fetched: fetched.Load(), Failed: failed.Load()}
	if err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	f.l.Info("languages fetched", zap.Int64("fetched", report.Fetched), zap.Int64("failed", report.Failed))
	return report, nil
}
