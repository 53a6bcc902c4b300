// Package ranking scrapes the most-starred repositories from a ranking site.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gomantics/repograph/config"
	"github.com/gomantics/repograph/domains/repos"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	FirstPage = 1
	LastPage  = 50
)

var (
	ErrInvalidPageRange = errors.New("invalid page range")
	ErrUnexpectedStatus = errors.New("unexpected status from ranking site")
)

// Options configure a Client.
type Options struct {
	BaseURL           string
	Concurrency       int
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client fetches ranking pages.
type Client struct {
	l           *zap.Logger
	http        *http.Client
	baseURL     string
	limiter     *rate.Limiter
	concurrency int
}

// New creates a client. Non-positive rates disable throttling.
func New(l *zap.Logger, opts Options) *Client {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		l:           l,
		http:        &http.Client{Timeout: opts.Timeout},
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		limiter:     rate.NewLimiter(limit, 1),
		concurrency: max(opts.Concurrency, 1),
	}
}

// NewFromConfig creates a client from the ranking config section.
func NewFromConfig(l *zap.Logger) *Client {
	return New(l, Options{
		BaseURL:           config.Ranking.BaseURL(),
		Concurrency:       int(config.Ranking.Concurrency()),
		RequestsPerSecond: config.Ranking.RequestsPerSecond(),
		Timeout:           config.Ranking.Timeout(),
	})
}

// PageURL returns the address of one ranking page.
func (c *Client) PageURL(page int) string {
	q := url.Values{"page": {strconv.Itoa(page)}}
	return c.baseURL + "/repositories?" + q.Encode()
}

// FetchPages fetches pages start through stop, inclusive, concurrently and
// returns their repositories in page order. Any failed page fails the call.
func (c *Client) FetchPages(ctx context.Context, start, stop int) ([]repos.Repo, error) {
	if start < FirstPage || stop > LastPage || start > stop {
		return nil, fmt.Errorf("%w: %d..%d, want %d <= start <= stop <= %d",
			ErrInvalidPageRange, start, stop, FirstPage, LastPage)
	}

	pages := make([][]repos.Repo, stop-start+1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for page := start; page <= stop; page++ {
		g.Go(func() error {
			found, err := c.FetchPage(ctx, page)
			if err != nil {
				return err
			}
			pages[page-start] = found
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []repos.Repo
	for _, found := range pages {
		all = append(all, found...)
	}
	return all, nil
}

// FetchPage fetches and parses one ranking page.
func (c *Client) FetchPage(ctx context.Context, page int) ([]repos.Repo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	pageURL := c.PageURL(page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for page %d: %w", page, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: page %d: %s", ErrUnexpectedStatus, page, resp.Status)
	}

	found, err := Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read page %d: %w", page, err)
	}

	c.l.Debug("fetched ranking page", zap.Int("page", page), zap.Int("repositories", len(found)))
	return found, nil
}
