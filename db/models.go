package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Contributor struct {
	Rank    int64
	Email   string
	Commits int64
}

type RepoLang struct {
	Repo   int64
	Lang   string
	Weight int64
}

type Repository struct {
	Rank           int64
	Owner          string
	Project        string
	Stars          pgtype.Int8
	HarvestedAt    pgtype.Int8
	LangsFetchedAt pgtype.Int8
}
