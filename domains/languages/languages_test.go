package languages

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gomantics/repograph/db/dbtest"
	"github.com/gomantics/repograph/domains/repos"
	"github.com/gomantics/repograph/libs/ghapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Languages(ctx context.Context, owner, project string) (map[string]int, error) {
	args := m.Called(owner, project)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func seed(t *testing.T, refs ...repos.Ref) (context.Context, *Fetcher, *mockClient) {
	t.Helper()

	s := dbtest.Open(t)
	ctx := context.Background()

	ranked := make([]repos.Repo, len(refs))
	for i, ref := range refs {
		ranked[i] = repos.Repo{Ref: ref}
	}
	_, err := repos.SaveRanked(ctx, s, ranked)
	require.NoError(t, err)

	client := &mockClient{}
	return ctx, NewFetcher(zap.NewNop(), s, client), client
}

func TestFetcher_Run(t *testing.T) {
	ctx, f, client := seed(t,
		repos.Ref{Rank: 1, Owner: "a", Project: "x"},
		repos.Ref{Rank: 2, Owner: "b", Project: "y"},
		repos.Ref{Rank: 3, Owner: "c", Project: "z"},
	)

	client.On("Languages", "a", "x").Return(map[string]int{"Go": 100, "Shell": 3}, nil)
	client.On("Languages", "b", "y").Return(map[string]int{}, nil)
	client.On("Languages", "c", "z").Return(nil, errors.New("connection reset"))

	report, err := f.Run(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, Report{Fetched: 2, Failed: 1}, report)
	client.AssertExpectations(t)

	byRepo, err := ByRepository(ctx, f.s)
	require.NoError(t, err)
	assert.Equal(t, map[int64]map[string]int64{1: {"Go": 100, "Shell": 3}}, byRepo)

	pending, err := repos.ListWithoutLanguages(ctx, f.s)
	require.NoError(t, err)
	assert.Equal(t, []repos.Ref{{Rank: 3, Owner: "c", Project: "z"}}, pending, "failed repositories stay queued")
}

func TestFetcher_RateLimitStops(t *testing.T) {
	ctx, f, client := seed(t,
		repos.Ref{Rank: 1, Owner: "a", Project: "x"},
		repos.Ref{Rank: 2, Owner: "b", Project: "y"},
	)

	client.On("Languages", "a", "x").Return(map[string]int{"C": 1}, nil)
	client.On("Languages", "b", "y").Return(nil, fmt.Errorf("%w: b/y", ghapi.ErrRateLimited))

	report, err := f.Run(ctx, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ghapi.ErrRateLimited)
	assert.Equal(t, int64(1), report.Fetched)

	pending, err := repos.ListWithoutLanguages(ctx, f.s)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSave_ReplacesRows(t *testing.T) {
	ctx, f, _ := seed(t, repos.Ref{Rank: 7, Owner: "a", Project: "x"})

	require.NoError(t, Save(ctx, f.s, 7, map[string]int{"Go": 1, "C": 2}))
	require.NoError(t, Save(ctx, f.s, 7, map[string]int{"Rust": 3}))

	byRepo, err := ByRepository(ctx, f.s)
	require.NoError(t, err)
	assert.Equal(t, map[int64]map[string]int64{7: {"Rust": 3}}, byRepo)

	err = Save(ctx, f.s, 99, map[string]int{})
	assert.ErrorIs(t, err, repos.ErrNotFound)
}
