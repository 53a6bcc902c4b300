package gitrepo

import (
	"strings"
)

// Provider defines the interface for git hosting services (GitHub, GitLab, Bitbucket, etc.)
type Provider interface {
	// Name returns the provider name (e.g., "github")
	Name() string

	// CloneURL returns the address mirrors of owner/project are cloned from
	CloneURL(owner, project string) string

	// ParseURL extracts owner and repository name from a URL
	ParseURL(url string) (owner, repo string)

	// MatchesURL returns true if the URL belongs to this provider
	MatchesURL(url string) bool
}

// ProviderForHost returns the provider serving repositories on host.
func ProviderForHost(host string) Provider {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" || host == "github.com" {
		return NewGitHubProvider()
	}
	return NewHostProvider(host, host)
}
