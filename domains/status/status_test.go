package status

import (
	"bytes"
	"testing"

	"github.com/gomantics/repograph/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	counts := db.CountRepositoryStatusRow{Total: 1500, Harvested: 4, LangsFetched: 3, ContributorRows: 16}

	sum, err := Summarize(counts, []int64{0, 2, 4, 10})
	require.NoError(t, err)

	assert.Equal(t, int64(1496), sum.Pending)
	assert.InDelta(t, 4.0, sum.MeanContributors, 1e-9)
	assert.InDelta(t, 3.0, sum.MedianContributors, 1e-9)
	assert.InDelta(t, 10.0, sum.MaxContributors, 1e-9)
}

func TestSummarize_NothingHarvested(t *testing.T) {
	sum, err := Summarize(db.CountRepositoryStatusRow{Total: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, Summary{Repositories: 2, Pending: 2}, sum)
}

func TestRender(t *testing.T) {
	sum := Summary{Repositories: 1500, Harvested: 1200, Pending: 300, ContributorRows: 1234567, MeanContributors: 12.5}

	var buf bytes.Buffer
	require.NoError(t, sum.Render(&buf))

	out := buf.String()
	assert.Contains(t, out, "1,500")
	assert.Contains(t, out, "1,234,567")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "pending")
}
