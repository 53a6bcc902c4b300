package repos

import (
	"context"
	"testing"

	"github.com/gomantics/repograph/db"
	"github.com/gomantics/repograph/db/dbtest"
	"github.com/gomantics/repograph/pkg/pgconv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		ref     Ref
		wantErr bool
	}{
		{name: "plain", ref: Ref{Rank: 0, Owner: "golang", Project: "go"}},
		{name: "dots dashes underscores", ref: Ref{Rank: 9, Owner: "a.b-c_d", Project: "x.js"}},
		{name: "negative rank", ref: Ref{Rank: -1, Owner: "a", Project: "b"}, wantErr: true},
		{name: "empty owner", ref: Ref{Rank: 1, Owner: "", Project: "b"}, wantErr: true},
		{name: "empty project", ref: Ref{Rank: 1, Owner: "a", Project: ""}, wantErr: true},
		{name: "parent directory", ref: Ref{Rank: 1, Owner: "..", Project: "b"}, wantErr: true},
		{name: "current directory", ref: Ref{Rank: 1, Owner: "a", Project: "."}, wantErr: true},
		{name: "path separator", ref: Ref{Rank: 1, Owner: "a/b", Project: "c"}, wantErr: true},
		{name: "option lookalike is still a name", ref: Ref{Rank: 1, Owner: "-a", Project: "b"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ref.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRef)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveRanked_AndQueue(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()
	stars := int64(100)

	added, err := SaveRanked(ctx, s, []Repo{
		{Ref: Ref{Rank: 2, Owner: "b", Project: "y"}},
		{Ref: Ref{Rank: 1, Owner: "a", Project: "x"}, Stars: &stars},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), added)

	added, err = SaveRanked(ctx, s, []Repo{
		{Ref: Ref{Rank: 1, Owner: "renamed", Project: "x"}},
		{Ref: Ref{Rank: 3, Owner: "c", Project: "z"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), added, "known ranks are left untouched")

	pending, err := NewQueue(s).Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Ref{
		{Rank: 1, Owner: "a", Project: "x"},
		{Rank: 2, Owner: "b", Project: "y"},
		{Rank: 3, Owner: "c", Project: "z"},
	}, pending, "queue is in rank order")

	entry, err := Get(ctx, s, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, entry.Status)
	require.NotNil(t, entry.Stars)
	assert.Equal(t, int64(100), *entry.Stars)

	_, err = Get(ctx, s, 404)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, Requeue(ctx, s, 404), ErrNotFound)
}

func TestSaveRanked_RejectsInvalidRefs(t *testing.T) {
	s := dbtest.Open(t)

	_, err := SaveRanked(context.Background(), s, []Repo{{Ref: Ref{Rank: 1, Owner: "..", Project: "x"}}})
	assert.ErrorIs(t, err, ErrInvalidRef)

	entries, err := List(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRequeue(t *testing.T) {
	s := dbtest.Open(t)
	ctx := context.Background()

	_, err := SaveRanked(ctx, s, []Repo{{Ref: Ref{Rank: 1, Owner: "a", Project: "x"}}})
	require.NoError(t, err)

	require.NoError(t, s.Tx(ctx, func(q *db.Queries) error {
		_, err := q.MarkHarvested(ctx, db.MarkHarvestedParams{Rank: 1, HarvestedAt: pgconv.ToInt8(pgconv.Ptr(int64(1)))})
		return err
	}))

	entry, err := Get(ctx, s, 1)
	require.NoError(t, err)
	assert.True(t, entry.Status.IsDone())

	pending, err := NewQueue(s).Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, Requeue(ctx, s, 1))

	pending, err = NewQueue(s).Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Ref{{Rank: 1, Owner: "a", Project: "x"}}, pending)
}
