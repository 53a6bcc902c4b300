package contributors

import (
	"context"
	"testing"

	"github.com/gomantics/repograph/db"
	"github.com/gomantics/repograph/db/dbtest"
	"github.com/gomantics/repograph/domains/harvest"
	"github.com/gomantics/repograph/domains/repos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seed(t *testing.T, s *db.Store, refs ...repos.Ref) {
	t.Helper()

	ranked := make([]repos.Repo, len(refs))
	for i, ref := range refs {
		ranked[i] = repos.Repo{Ref: ref}
	}
	_, err := repos.SaveRanked(context.Background(), s, ranked)
	require.NoError(t, err)
}

func TestSink_CommitReplacesRowsAndMarksDone(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	ref := repos.Ref{Rank: 1, Owner: "a", Project: "x"}
	seed(t, s, ref)

	sink := NewSink(s)
	require.NoError(t, sink.Commit(ctx, ref, map[string]int{"old@example.com": 9, "p@q.com": 1}))
	require.NoError(t, sink.Commit(ctx, ref, map[string]int{"p@q.com": 5}))

	rows, err := List(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []db.Contributor{{Rank: 1, Email: "p@q.com", Commits: 5}}, rows)

	pending, err := repos.ListUnharvested(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSink_EmptyCountsStillDone(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	ref := repos.Ref{Rank: 3, Owner: "b", Project: "y"}
	seed(t, s, ref)

	require.NoError(t, NewSink(s).Commit(ctx, ref, map[string]int{}))

	rows, err := List(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, rows)

	entries, err := repos.List(ctx, s)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Status.IsDone())
}

func TestSink_FailedCommitLeavesNothingBehind(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	ref := repos.Ref{Rank: 1, Owner: "a", Project: "x"}
	seed(t, s, ref)

	sink := NewSink(s)
	require.NoError(t, sink.Commit(ctx, ref, map[string]int{"p@q.com": 5}))

	// Postgres rejects NUL bytes in text, failing the insert after the delete ran.
	err := sink.Commit(ctx, ref, map[string]int{"new@example.com": 1, "bad\x00@example.com": 2})
	require.Error(t, err)

	rows, err := List(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []db.Contributor{{Rank: 1, Email: "p@q.com", Commits: 5}}, rows, "rolled back to the previous rows")
}

func TestSink_UnknownRank(t *testing.T) {
	s := dbtest.Open(t)

	err := NewSink(s).Commit(context.Background(), repos.Ref{Rank: 42, Owner: "a", Project: "x"}, map[string]int{})
	require.Error(t, err)
	assert.ErrorIs(t, err, repos.ErrNotFound)
}

func TestSink_NegativeCount(t *testing.T) {
	sink := NewSink(nil)

	err := sink.Commit(context.Background(), repos.Ref{Rank: 1, Owner: "a", Project: "x"}, map[string]int{"a@b.c": -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNegativeCount)
}

type fixedPipeline map[int64]map[string]int

func (p fixedPipeline) Harvest(ctx context.Context, ref repos.Ref) (map[string]int, error) {
	return p[ref.Rank], nil
}

func TestHarvest_AgainstStore(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	seed(t, s,
		repos.Ref{Rank: 1, Owner: "a", Project: "x"},
		repos.Ref{Rank: 2, Owner: "b", Project: "y"},
	)

	pipeline := fixedPipeline{
		1: {"p@q.com": 5},
		2: {},
	}
	sched := harvest.NewScheduler(zap.NewNop(), pipeline, NewSink(s), nil)
	queue := repos.NewQueue(s)

	report, err := harvest.Harvest(ctx, queue, sched, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Done)

	rows, err := List(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, []db.Contributor{{Rank: 1, Email: "p@q.com", Commits: 5}}, rows)

	pending, err := queue.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	report, err = harvest.Harvest(ctx, queue, sched, 1)
	require.NoError(t, err)
	assert.Zero(t, report.Done, "a second run has nothing left to do")

	again, err := List(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, rows, again)
}
