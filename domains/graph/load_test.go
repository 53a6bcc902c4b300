package graph

import (
	"context"
	"testing"

	"github.com/gomantics/repograph/db/dbtest"
	"github.com/gomantics/repograph/domains/contributors"
	"github.com/gomantics/repograph/domains/languages"
	"github.com/gomantics/repograph/domains/repos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()

	a := repos.Ref{Rank: 1, Owner: "a", Project: "x"}
	b := repos.Ref{Rank: 2, Owner: "b", Project: "y"}
	_, err := repos.SaveRanked(ctx, s, []repos.Repo{{Ref: a}, {Ref: b}})
	require.NoError(t, err)

	require.NoError(t, languages.Save(ctx, s, 1, map[string]int{"Go": 3}))

	sink := contributors.NewSink(s)
	require.NoError(t, sink.Commit(ctx, a, map[string]int{"p@q.com": 5, "r@s.com": 1}))
	require.NoError(t, sink.Commit(ctx, b, map[string]int{"p@q.com": 2}))

	g, err := Load(ctx, s)
	require.NoError(t, err)

	require.Len(t, g.Repositories, 2)
	assert.Equal(t, map[string]int64{"Go": 3}, g.Repositories[0].Languages)
	assert.Equal(t, []Contributor{{Email: "p@q.com"}, {Email: "r@s.com"}}, g.Contributors)
	assert.Len(t, g.Edges, 3)
}
