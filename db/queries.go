package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertRepository = `-- name: InsertRepository :execrows
INSERT INTO repositories (rank, owner, project, stars)
VALUES ($1, $2, $3, $4)
ON CONFLICT (rank) DO NOTHING
`

type InsertRepositoryParams struct {
	Rank    int64
	Owner   string
	Project string
	Stars   pgtype.Int8
}

func (q *Queries) InsertRepository(ctx context.Context, arg InsertRepositoryParams) (int64, error) {
	result, err := q.db.Exec(ctx, insertRepository,
		arg.Rank,
		arg.Owner,
		arg.Project,
		arg.Stars,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listRepositories = `-- name: ListRepositories :many
SELECT rank, owner, project, stars, harvested_at, langs_fetched_at
FROM repositories
ORDER BY rank
`

func (q *Queries) ListRepositories(ctx context.Context) ([]Repository, error) {
	rows, err := q.db.Query(ctx, listRepositories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Repository
	for rows.Next() {
		var i Repository
		if err := rows.Scan(
			&i.Rank,
			&i.Owner,
			&i.Project,
			&i.Stars,
			&i.HarvestedAt,
			&i.LangsFetchedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listUnharvestedRepositories = `-- name: ListUnharvestedRepositories :many
SELECT rank, owner, project
FROM repositories
WHERE harvested_at IS NULL
ORDER BY rank
`

type ListUnharvestedRepositoriesRow struct {
	Rank    int64
	Owner   string
	Project string
}

func (q *Queries) ListUnharvestedRepositories(ctx context.Context) ([]ListUnharvestedRepositoriesRow, error) {
	rows, err := q.db.Query(ctx, listUnharvestedRepositories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListUnharvestedRepositoriesRow
	for rows.Next() {
		var i ListUnharvestedRepositoriesRow
		if err := rows.Scan(&i.Rank, &i.Owner, &i.Project); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listRepositoriesWithoutLanguages = `-- name: ListRepositoriesWithoutLanguages :many
SELECT rank, owner, project
FROM repositories
WHERE langs_fetched_at IS NULL
ORDER BY rank
`

type ListRepositoriesWithoutLanguagesRow struct {
	Rank    int64
	Owner   string
	Project string
}

func (q *Queries) ListRepositoriesWithoutLanguages(ctx context.Context) ([]ListRepositoriesWithoutLanguagesRow, error) {
	rows, err := q.db.Query(ctx, listRepositoriesWithoutLanguages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListRepositoriesWithoutLanguagesRow
	for rows.Next() {
		var i ListRepositoriesWithoutLanguagesRow
		if err := rows.Scan(&i.Rank, &i.Owner, &i.Project); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markHarvested = `-- name: MarkHarvested :execrows
UPDATE repositories SET harvested_at = $2 WHERE rank = $1
`

type MarkHarvestedParams struct {
	Rank        int64
	HarvestedAt pgtype.Int8
}

func (q *Queries) MarkHarvested(ctx context.Context, arg MarkHarvestedParams) (int64, error) {
	result, err := q.db.Exec(ctx, markHarvested, arg.Rank, arg.HarvestedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const markLanguagesFetched = `-- name: MarkLanguagesFetched :execrows
UPDATE repositories SET langs_fetched_at = $2 WHERE rank = $1
`

type MarkLanguagesFetchedParams struct {
	Rank           int64
	LangsFetchedAt pgtype.Int8
}

func (q *Queries) MarkLanguagesFetched(ctx context.Context, arg MarkLanguagesFetchedParams) (int64, error) {
	result, err := q.db.Exec(ctx, markLanguagesFetched, arg.Rank, arg.LangsFetchedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteContributorsByRank = `-- name: DeleteContributorsByRank :exec
DELETE FROM contributors WHERE rank = $1
`

func (q *Queries) DeleteContributorsByRank(ctx context.Context, rank int64) error {
	_, err := q.db.Exec(ctx, deleteContributorsByRank, rank)
	return err
}

const insertContributors = `-- name: InsertContributors :execrows
INSERT INTO contributors (rank, email, commits)
SELECT $1::bigint, unnest($2::text[]), unnest($3::bigint[])
`

type InsertContributorsParams struct {
	Rank    int64
	Emails  []string
	Commits []int64
}

func (q *Queries) InsertContributors(ctx context.Context, arg InsertContributorsParams) (int64, error) {
	result, err := q.db.Exec(ctx, insertContributors, arg.Rank, arg.Emails, arg.Commits)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listContributors = `-- name: ListContributors :many
SELECT rank, email, commits
FROM contributors
ORDER BY rank, email
`

func (q *Queries) ListContributors(ctx context.Context) ([]Contributor, error) {
	rows, err := q.db.Query(ctx, listContributors)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Contributor
	for rows.Next() {
		var i Contributor
		if err := rows.Scan(&i.Rank, &i.Email, &i.Commits); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteRepoLangsByRepo = `-- name: DeleteRepoLangsByRepo :exec
DELETE FROM repo_langs WHERE repo = $1
`

func (q *Queries) DeleteRepoLangsByRepo(ctx context.Context, repo int64) error {
	_, err := q.db.Exec(ctx, deleteRepoLangsByRepo, repo)
	return err
}

const insertRepoLangs = `-- name: InsertRepoLangs :execrows
INSERT INTO repo_langs (repo, lang, weight)
SELECT $1::bigint, unnest($2::text[]), unnest($3::bigint[])
`

type InsertRepoLangsParams struct {
	Repo    int64
	Langs   []string
	Weights []int64
}

func (q *Queries) InsertRepoLangs(ctx context.Context, arg InsertRepoLangsParams) (int64, error) {
	result, err := q.db.Exec(ctx, insertRepoLangs, arg.Repo, arg.Langs, arg.Weights)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listRepoLangs = `-- name: ListRepoLangs :many
SELECT repo, lang, weight
FROM repo_langs
ORDER BY repo, lang
`

func (q *Queries) ListRepoLangs(ctx context.Context) ([]RepoLang, error) {
	rows, err := q.db.Query(ctx, listRepoLangs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RepoLang
	for rows.Next() {
		var i RepoLang
		if err := rows.Scan(&i.Repo, &i.Lang, &i.Weight); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countRepositoryStatus = `-- name: CountRepositoryStatus :one
SELECT
    count(*)                                        AS total,
    count(*) FILTER (WHERE harvested_at IS NOT NULL)     AS harvested,
    count(*) FILTER (WHERE langs_fetched_at IS NOT NULL) AS langs_fetched,
    (SELECT count(*) FROM contributors)             AS contributor_rows
FROM repositories
`

type CountRepositoryStatusRow struct {
	Total           int64
	Harvested       int64
	LangsFetched    int64
	ContributorRows int64
}

func (q *Queries) CountRepositoryStatus(ctx context.Context) (CountRepositoryStatusRow, error) {
	row := q.db.QueryRow(ctx, countRepositoryStatus)
	var i CountRepositoryStatusRow
	err := row.Scan(
		&i.Total,
		&i.Harvested,
		&i.LangsFetched,
		&i.ContributorRows,
	)
	return i, err
}

const contributorsPerHarvestedRepository = `-- name: ContributorsPerHarvestedRepository :many
SELECT count(c.email) AS contributors
FROM repositories r
LEFT JOIN contributors c ON c.rank = r.rank
WHERE r.harvested_at IS NOT NULL
GROUP BY r.rank
ORDER BY r.rank
`

func (q *Queries) ContributorsPerHarvestedRepository(ctx context.Context) ([]int64, error) {
	rows, err := q.db.Query(ctx, contributorsPerHarvestedRepository)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var contributors int64
		if err := rows.Scan(&contributors); err != nil {
			return nil, err
		}
		items = append(items, contributors)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getRepository = `-- name: GetRepository :one
SELECT rank, owner, project, stars, harvested_at, langs_fetched_at
FROM repositories
WHERE rank = $1
`

func (q *Queries) GetRepository(ctx context.Context, rank int64) (Repository, error) {
	row := q.db.QueryRow(ctx, getRepository, rank)
	var i Repository
	err := row.Scan(
		&i.Rank,
		&i.Owner,
		&i.Project,
		&i.Stars,
		&i.HarvestedAt,
		&i.LangsFetchedAt,
	)
	return i, err
}

const listContributorsByRank = `-- name: ListContributorsByRank :many
SELECT rank, email, commits
FROM contributors
WHERE rank = $1
ORDER BY commits DESC, email
`

func (q *Queries) ListContributorsByRank(ctx context.Context, rank int64) ([]Contributor, error) {
	rows, err := q.db.Query(ctx, listContributorsByRank, rank)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Contributor
	for rows.Next() {
		var i Contributor
		if err := rows.Scan(&i.Rank, &i.Email, &i.Commits); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const clearHarvested = `-- name: ClearHarvested :execrows
UPDATE repositories SET harvested_at = NULL WHERE rank = $1
`

func (q *Queries) ClearHarvested(ctx context.Context, rank int64) (int64, error) {
	result, err := q.db.Exec(ctx, clearHarvested, rank)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
