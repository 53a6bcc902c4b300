package ranking

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gomantics/repograph/domains/repos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func entry(rank int, owner, project string, stars int) string {
	return fmt.Sprintf(`<a class="list-group-item paginated_item" href="/%s/%s">
<span class="name">
%d.
</span>
%s/%s
<span class="stargazers_count">
%d
</span>
</a>
`, owner, project, rank, owner, project, stars)
}

func ptr(n int64) *int64 { return &n }

func TestParse(t *testing.T) {
	testCases := []struct {
		name string
		page string
		want []repos.Repo
	}{
		{
			name: "two entries",
			page: "<html>\n" + entry(1, "freeCodeCamp", "freeCodeCamp", 400000) + entry(2, "EbookFoundation", "free-programming-books", 330000) + "</html>\n",
			want: []repos.Repo{
				{Ref: repos.Ref{Rank: 1, Owner: "freeCodeCamp", Project: "freeCodeCamp"}, Stars: ptr(400000)},
				{Ref: repos.Ref{Rank: 2, Owner: "EbookFoundation", Project: "free-programming-books"}, Stars: ptr(330000)},
			},
		},
		{
			name: "indented markup",
			page: "    " + strings.ReplaceAll(entry(10, "golang", "go", 120000), "\n", "\n      "),
			want: []repos.Repo{
				{Ref: repos.Ref{Rank: 10, Owner: "golang", Project: "go"}, Stars: ptr(120000)},
			},
		},
		{
			name: "incomplete trailing entry is dropped",
			page: entry(5, "a", "b", 7) + `<a class="list-group-item paginated_item" href="/c/d">` + "\n6.\n",
			want: []repos.Repo{
				{Ref: repos.Ref{Rank: 5, Owner: "a", Project: "b"}, Stars: ptr(7)},
			},
		},
		{
			name: "page without entries",
			page: "<html><body>Not Found</body></html>",
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tc.page))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func newTestClient(url string) *Client {
	return New(zap.NewNop(), Options{
		BaseURL:           url,
		Concurrency:       3,
		RequestsPerSecond: 1000,
		Timeout:           5 * time.Second,
	})
}

func TestFetchPages(t *testing.T) {
	var inFlight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}

		assert.Equal(t, "/repositories", r.URL.Path)
		var page int
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)

		time.Sleep(5 * time.Millisecond)
		base := (page - 1) * 2
		fmt.Fprint(w, entry(base+1, "owner", fmt.Sprintf("p%d", base+1), 100-base))
		fmt.Fprint(w, entry(base+2, "owner", fmt.Sprintf("p%d", base+2), 99-base))
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).FetchPages(context.Background(), 2, 6)
	require.NoError(t, err)
	require.Len(t, got, 10)

	for i, r := range got {
		assert.Equal(t, int64(i+3), r.Rank, "results keep page order")
	}
	assert.LessOrEqual(t, int(peak.Load()), 3)
}

func TestFetchPages_InvalidRange(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")

	for _, pages := range [][2]int{{0, 1}, {3, 2}, {1, 51}} {
		_, err := c.FetchPages(context.Background(), pages[0], pages[1])
		assert.ErrorIs(t, err, ErrInvalidPageRange, "%v", pages)
	}
}

func TestFetchPages_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, entry(1, "a", "b", 1))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchPages(context.Background(), 1, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestPageURL(t *testing.T) {
	c := newTestClient("https://gitstar-ranking.com/")
	assert.Equal(t, "https://gitstar-ranking.com/repositories?page=7", c.PageURL(7))
}
