package repos

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidRef is returned for refs that cannot name a hosted repository.
	ErrInvalidRef = errors.New("invalid repository reference")
	ErrNotFound   = errors.New("repository not found")
)

// nameRe is the alphabet hosting sites allow in owner and project names.
var nameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Ref identifies one ranked repository and one unit of harvesting work.
type Ref struct {
	Rank    int64
	Owner   string
	Project string
}

// String returns owner/project.
func (r Ref) String() string {
	return r.Owner + "/" + r.Project
}

// Validate checks the rank and that owner and project are safe path segments.
func (r Ref) Validate() error {
	if r.Rank < 0 {
		return fmt.Errorf("%w: negative rank %d", ErrInvalidRef, r.Rank)
	}
	for _, name := range []string{r.Owner, r.Project} {
		if !nameRe.MatchString(name) || name == "." || name == ".." {
			return fmt.Errorf("%w: bad name %q", ErrInvalidRef, name)
		}
	}
	return nil
}

// Repo is a ranked repository as discovered on the ranking site.
type Repo struct {
	Ref
	Stars *int64
}

// Entry is a stored repository with its processing state.
type Entry struct {
	Repo
	Status           Status
	LanguagesFetched bool
}
