package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/gomantics/repograph/db"
	"github.com/gomantics/repograph/pkg/pgconv"
	"github.com/jackc/pgx/v5"
)

// ListUnharvested returns, in rank order, every repository without recorded
// contributor data. This is the harvest work queue.
func ListUnharvested(ctx context.Context, s *db.Store) ([]Ref, error) {
	rows, err := db.Query1(ctx, s, func(q *db.Queries) ([]db.ListUnharvestedRepositoriesRow, error) {
		return q.ListUnharvestedRepositories(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list unharvested repositories: %w", err)
	}

	refs := make([]Ref, len(rows))
	for i, row := range rows {
		refs[i] = Ref{Rank: row.Rank, Owner: row.Owner, Project: row.Project}
	}
	return refs, nil
}

// ListWithoutLanguages returns, in rank order, every repository whose
// language sizes have not been fetched yet.
func ListWithoutLanguages(ctx context.Context, s *db.Store) ([]Ref, error) {
	rows, err := db.Query1(ctx, s, func(q *db.Queries) ([]db.ListRepositoriesWithoutLanguagesRow, error) {
		return q.ListRepositoriesWithoutLanguages(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories without languages: %w", err)
	}

	refs := make([]Ref, len(rows))
	for i, row := range rows {
		refs[i] = Ref{Rank: row.Rank, Owner: row.Owner, Project: row.Project}
	}
	return refs, nil
}

// List returns every known repository with its processing state.
func List(ctx context.Context, s *db.Store) ([]Entry, error) {
	rows, err := db.Query1(ctx, s, func(q *db.Queries) ([]db.Repository, error) {
		return q.ListRepositories(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = toEntry(row)
	}
	return entries, nil
}

// Get returns the repository with the given rank.
func Get(ctx context.Context, s *db.Store, rank int64) (Entry, error) {
	row, err := db.Query1(ctx, s, func(q *db.Queries) (db.Repository, error) {
		return q.GetRepository(ctx, rank)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get repository %d: %w", rank, err)
	}
	return toEntry(row), nil
}

// Requeue drops the contributor data of rank so that the next harvest picks it up again.
func Requeue(ctx context.Context, s *db.Store, rank int64) error {
	return s.Tx(ctx, func(q *db.Queries) error {
		if err := q.DeleteContributorsByRank(ctx, rank); err != nil {
			return fmt.Errorf("failed to clear contributors of rank %d: %w", rank, err)
		}

		n, err := q.ClearHarvested(ctx, rank)
		if err != nil {
			return fmt.Errorf("failed to requeue rank %d: %w", rank, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SaveRanked inserts newly discovered repositories in one transaction.
// Ranks already known are left untouched. It returns how many rows were added.
func SaveRanked(ctx context.Context, s *db.Store, ranked []Repo) (int64, error) {
	for _, r := range ranked {
		if err := r.Validate(); err != nil {
			return 0, err
		}
	}

	var added int64
	err := s.Tx(ctx, func(q *db.Queries) error {
		added = 0
		for _, r := range ranked {
			n, err := q.InsertRepository(ctx, db.InsertRepositoryParams{
				Rank:    r.Rank,
				Owner:   r.Owner,
				Project: r.Project,
				Stars:   pgconv.ToInt8(r.Stars),
			})
			if err != nil {
				return fmt.Errorf("failed to insert %s: %w", r, err)
			}
			added += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Queue is the harvest work queue backed by the store.
type Queue struct {
	s *db.Store
}

// NewQueue creates a work queue reading from s.
func NewQueue(s *db.Store) *Queue {
	return &Queue{s: s}
}

// Pending returns the repositories still lacking contributor data.
func (q *Queue) Pending(ctx context.Context) ([]Ref, error) {
	return ListUnharvested(ctx, q.s)
}

// toEntry converts a db.Repository to a domain Entry
func toEntry(row db.Repository) Entry {
	status := StatusPending
	if row.HarvestedAt.Valid {
		status = StatusHarvested
	}

	return Entry{
		Repo: Repo{
			Ref:   Ref{Rank: row.Rank, Owner: row.Owner, Project: row.Project},
			Stars: pgconv.FromInt8(row.Stars),
		},
		Status:           status,
		LanguagesFetched: row.LangsFetchedAt.Valid,
	}
}
