// Package contributors persists harvested commit counts.
package contributors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gomantics/repograph/db"
	"github.com/gomantics/repograph/domains/repos"
	"github.com/gomantics/repograph/pkg/pgconv"
)

var ErrNegativeCount = errors.New("negative commit count")

// Sink writes one repository's contributor counts at a time.
type Sink struct {
	s   *db.Store
	now func() time.Time
}

// NewSink creates a sink writing to s
func NewSink(s *db.Store) *Sink {
	return &Sink{s: s, now: time.Now}
}

// Commit replaces the contributor rows of ref with counts and marks ref as
// harvested, all in one transaction. Empty counts still mark ref harvested.
func (k *Sink) Commit(ctx context.Context, ref repos.Ref, counts map[string]int) error {
	emails := make([]string, 0, len(counts))
	for email, n := range counts {
		if n < 0 {
			return fmt.Errorf("%w: %s has %d for %s", ErrNegativeCount, ref, n, email)
		}
		emails = append(emails, email)
	}
	sort.Strings(emails)

	commits := make([]int64, len(emails))
	for i, email := range emails {
		commits[i] = int64(counts[email])
	}

	harvestedAt := k.now().Unix()

	return k.s.Tx(ctx, func(q *db.Queries) error {
		if err := q.DeleteContributorsByRank(ctx, ref.Rank); err != nil {
			return fmt.Errorf("failed to clear contributors of %s: %w", ref, err)
		}

		if len(emails) > 0 {
			if _, err := q.InsertContributors(ctx, db.InsertContributorsParams{
				Rank:    ref.Rank,
				Emails:  emails,
				Commits: commits,
			}); err != nil {
				return fmt.Errorf("failed to insert contributors of %s: %w", ref, err)
			}
		}

		n, err := q.MarkHarvested(ctx, db.MarkHarvestedParams{
			Rank:        ref.Rank,
			HarvestedAt: pgconv.ToInt8(pgconv.Ptr(harvestedAt)),
		})
		if err != nil {
			return fmt.Errorf("failed to mark %s harvested: %w", ref, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: rank %d", repos.ErrNotFound, ref.Rank)
		}

		return nil
	})
}

// ForRepository returns the contributors of rank, most commits first.
func ForRepository(ctx context.Context, s *db.Store, rank int64) ([]db.Contributor, error) {
	rows, err := db.Query1(ctx, s, func(q *db.Queries) ([]db.Contributor, error) {
		return q.ListContributorsByRank(ctx, rank)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list contributors of rank %d: %w", rank, err)
	}
	return rows, nil
}

// List returns every stored contributor row.
func List(ctx context.Context, s *db.Store) ([]db.Contributor, error) {
	rows, err := db.Query1(ctx, s, func(q *db.Queries) ([]db.Contributor, error) {
		return q.ListContributors(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list contributors: %w", err)
	}
	return rows, nil
}
