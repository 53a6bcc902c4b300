package gitrepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostProvider(t *testing.T) {
	p := ProviderForHost("github.com")

	assert.Equal(t, "github", p.Name())
	assert.Equal(t, "https://github.com/golang/go.git", p.CloneURL("golang", "go"))
	assert.True(t, p.MatchesURL("https://github.com/golang/go.git"))
	assert.False(t, p.MatchesURL("https://gitlab.com/golang/go.git"))

	other := ProviderForHost("git.example.org")
	assert.Equal(t, "git.example.org", other.Name())
	assert.Equal(t, "https://git.example.org/a/b.git", other.CloneURL("a", "b"))
}

func TestHostProvider_ParseURL(t *testing.T) {
	p := NewGitHubProvider()

	testCases := []struct {
		url     string
		owner   string
		project string
	}{
		{url: "https://github.com/golang/go.git", owner: "golang", project: "go"},
		{url: "https://github.com/golang/go/", owner: "golang", project: "go"},
		{url: "http://github.com/golang/go", owner: "golang", project: "go"},
		{url: "git@github.com:golang/go.git", owner: "golang", project: "go"},
		{url: "https://GitHub.com/golang/go.git", owner: "golang", project: "go"},
		{url: "https://github.com/golang/go/tree/master", owner: "", project: "golang/go/tree/master"},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			owner, project := p.ParseURL(tc.url)
			assert.Equal(t, tc.owner, owner)
			assert.Equal(t, tc.project, project)
		})
	}
}
