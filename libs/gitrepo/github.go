package gitrepo

import (
	"strings"
)

// HostProvider implements Provider for any host serving https://<host>/<owner>/<project>.git
type HostProvider struct {
	name string
	host string
}

// NewHostProvider creates a provider for host
func NewHostProvider(name, host string) *HostProvider {
	return &HostProvider{name: name, host: strings.ToLower(host)}
}

// NewGitHubProvider creates the provider for github.com
func NewGitHubProvider() *HostProvider {
	return NewHostProvider("github", "github.com")
}

func (p *HostProvider) Name() string {
	return p.name
}

func (p *HostProvider) CloneURL(owner, project string) string {
	return "https://" + p.host + "/" + owner + "/" + project + ".git"
}

// ParseURL extracts owner and project from an https, http, bare host or scp-like
// address on this host. Anything else yields an empty owner and the remainder.
func (p *HostProvider) ParseURL(url string) (owner, repo string) {
	url = strings.TrimSuffix(url, "/")
	url = strings.TrimSuffix(url, ".git")

	lower := strings.ToLower(url)
	for _, prefix := range p.prefixes() {
		if strings.HasPrefix(lower, prefix) {
			url = url[len(prefix):]
			break
		}
	}

	parts := strings.Split(url, "/")
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", url
}

func (p *HostProvider) MatchesURL(url string) bool {
	url = strings.ToLower(url)
	for _, prefix := range p.prefixes()[:3] {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}

// prefixes lists the address forms of this host; the bare host form comes last.
func (p *HostProvider) prefixes() []string {
	return []string{
		"https://" + p.host + "/",
		"http://" + p.host + "/",
		"git@" + p.host + ":",
		p.host + "/",
	}
}
