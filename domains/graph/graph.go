// Package graph assembles the repository/contributor bipartite graph from the store.
package graph

import (
	"context"
	"sort"

	"github.com/gomantics/repograph/db"
	"github.com/gomantics/repograph/domains/contributors"
	"github.com/gomantics/repograph/domains/languages"
	"github.com/gomantics/repograph/domains/repos"
)

type Repository struct {
	Rank      int64
	Owner     string
	Project   string
	Stars     *int64
	Languages map[string]int64
}

// Label returns owner/project.
func (r Repository) Label() string {
	return r.Owner + "/" + r.Project
}

type Contributor struct {
	Email string
}

// Edge links a contributor to a repository, weighted by commit count.
type Edge struct {
	Email   string
	Rank    int64
	Commits int64
}

// Graph is ordered: repositories by rank, contributors by email and
// edges by rank then email.
type Graph struct {
	Repositories []Repository
	Contributors []Contributor
	Edges        []Edge
}

// Load reads the whole graph from the store.
func Load(ctx context.Context, s *db.Store) (*Graph, error) {
	entries, err := repos.List(ctx, s)
	if err != nil {
		return nil, err
	}

	langs, err := languages.ByRepository(ctx, s)
	if err != nil {
		return nil, err
	}

	rows, err := contributors.List(ctx, s)
	if err != nil {
		return nil, err
	}

	return Build(entries, langs, rows), nil
}

// Build assembles a graph from stored rows. A contributor appearing in several
// repositories becomes one node with one edge per repository.
func Build(entries []repos.Entry, langs map[int64]map[string]int64, rows []db.Contributor) *Graph {
	g := &Graph{
		Repositories: make([]Repository, 0, len(entries)),
		Contributors: []Contributor{},
		Edges:        make([]Edge, 0, len(rows)),
	}

	for _, e := range entries {
		g.Repositories = append(g.Repositories, Repository{
			Rank:      e.Rank,
			Owner:     e.Owner,
			Project:   e.Project,
			Stars:     e.Stars,
			Languages: langs[e.Rank],
		})
	}
	sort.Slice(g.Repositories, func(i, j int) bool {
		return g.Repositories[i].Rank < g.Repositories[j].Rank
	})

	seen := make(map[string]bool)
	for _, row := range rows {
		g.Edges = append(g.Edges, Edge{Email: row.Email, Rank: row.Rank, Commits: row.Commits})
		if !seen[row.Email] {
			seen[row.Email] = true
			g.Contributors = append(g.Contributors, Contributor{Email: row.Email})
		}
	}
	sort.Slice(g.Contributors, func(i, j int) bool {
		return g.Contributors[i].Email < g.Contributors[j].Email
	})
	sort.Slice(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.Email < b.Email
	})

	return g
}
