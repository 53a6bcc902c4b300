// Package ghapi reads repository metadata from the GitHub REST API.
package ghapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/gomantics/repograph/config"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ErrRateLimited means the API quota is exhausted and further calls are pointless.
var ErrRateLimited = errors.New("github api rate limit reached")

const defaultSecondaryWait = time.Hour

// Options configure a Client.
type Options struct {
	// Token is optional; without it calls are anonymous and heavily limited.
	Token string
	// BaseURL overrides the REST endpoint, e.g. for GitHub Enterprise.
	BaseURL string
	// MaxSecondaryWait caps one sleep on a secondary rate limit.
	MaxSecondaryWait time.Duration
}

// Client wraps go-github with secondary rate limit handling.
type Client struct {
	l    *zap.Logger
	rest *github.Client
}

// New creates a client.
func New(l *zap.Logger, opts Options) (*Client, error) {
	wait := opts.MaxSecondaryWait
	if wait <= 0 {
		wait = defaultSecondaryWait
	}

	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(wait, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = rateLimitWaiter
	if opts.Token != "" {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
		}
	}

	rest := github.NewClient(&http.Client{Transport: transport})
	if opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid github api url %q: %w", opts.BaseURL, err)
		}
		rest.BaseURL = base
	}

	return &Client{l: l, rest: rest}, nil
}

// NewFromConfig creates a client from the github config section.
func NewFromConfig(l *zap.Logger) (*Client, error) {
	return New(l, Options{
		Token:   config.GitHub.Token(),
		BaseURL: config.GitHub.APIURL(),
	})
}

// Languages returns the bytes of code per language of owner/project.
// Repositories that are gone or blocked have no languages.
func (c *Client) Languages(ctx context.Context, owner, project string) (map[string]int, error) {
	langs, _, err := c.rest.Repositories.ListLanguages(ctx, owner, project)
	if err == nil {
		if langs == nil {
			langs = map[string]int{}
		}
		return langs, nil
	}

	if isRateLimit(err) {
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrRateLimited, owner, project, err)
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		switch errResp.Response.StatusCode {
		case http.StatusNotFound, http.StatusUnavailableForLegalReasons:
			c.l.Debug("repository unavailable, recording no languages",
				zap.String("repo", owner+"/"+project),
				zap.Int("status", errResp.Response.StatusCode),
				zap.String("message", errResp.Message),
			)
			return map[string]int{}, nil
		}
	}

	return nil, fmt.Errorf("failed to list languages of %s/%s: %w", owner, project, err)
}

func isRateLimit(err error) bool {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil &&
		errResp.Response.StatusCode == http.StatusForbidden &&
		strings.Contains(strings.ToLower(errResp.Message), "rate limit") {
		return true
	}

	return false
}
