package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	formatcfg "github.com/go-git/go-git/v5/plumbing/format/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// originHead is the ref a fetch keeps pointing at the remote default branch.
const originHead = "refs/remotes/origin/HEAD"

// Mirror is a local treeless clone of one remote repository.
type Mirror struct {
	Path string
	// Revision is what gets summarized; empty for a repository without commits.
	Revision string
}

// Mirrors manages the mirror tree rooted at one directory, laid out as <owner>/<project>.
// Ensure is safe for concurrent use; calls for the same mirror path share one clone or fetch.
type Mirrors struct {
	l        *zap.Logger
	root     string
	provider Provider
	flights  singleflight.Group
}

// NewMirrors creates a mirror manager rooted at root
func NewMirrors(l *zap.Logger, root string, provider Provider) (*Mirrors, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve mirror dir %s: %w", root, err)
	}

	return &Mirrors{l: l, root: abs, provider: provider}, nil
}

// Path returns where the mirror of owner/project lives
func (m *Mirrors) Path(owner, project string) string {
	return filepath.Join(m.root, owner, project)
}

// Ensure makes the mirror of owner/project exist and be up to date: a treeless
// clone the first time, a fetch afterwards. Every failure wraps ErrMirrorUnavailable
// or ErrRateLimited.
//
// Concurrent calls for the same path join the update already running. A caller
// whose context is still live retries when the shared update was cancelled
// under another caller's context.
func (m *Mirrors) Ensure(ctx context.Context, owner, project string) (*Mirror, error) {
	dir := m.Path(owner, project)

	for {
		ch := m.flights.DoChan(dir, func() (any, error) {
			return m.ensure(ctx, owner, project)
		})

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrMirrorUnavailable, dir, ctx.Err())
		case res := <-ch:
			if res.Err != nil {
				if isContextErr(res.Err) && ctx.Err() == nil {
					continue
				}
				return nil, res.Err
			}
			mirror := *res.Val.(*Mirror)
			return &mirror, nil
		}
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (m *Mirrors) ensure(ctx context.Context, owner, project string) (*Mirror, error) {
	url := m.provider.CloneURL(owner, project)
	if _, err := transport.NewEndpoint(url); err != nil {
		return nil, fmt.Errorf("%w: bad clone url %s: %w", ErrMirrorUnavailable, url, err)
	}

	dir := m.Path(owner, project)
	l := m.l.With(
		zap.String("provider", m.provider.Name()),
		zap.String("owner", owner),
		zap.String("project", project),
	)

	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		if err := m.verifyOrigin(dir, owner, project); err != nil {
			return nil, err
		}

		l.Debug("fetching mirror", zap.String("dir", dir))
		if _, err := runGit(ctx, dir, "fetch", "--quiet", "--prune", "origin"); err != nil {
			return nil, classify(ErrMirrorUnavailable, "fetch "+url, err)
		}
	case err == nil:
		return nil, fmt.Errorf("%w: %s is not a directory", ErrMirrorUnavailable, dir)
	case errors.Is(err, fs.ErrNotExist):
		l.Debug("cloning mirror", zap.String("url", url), zap.String("dir", dir))
		if err := m.clone(ctx, url, dir); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %w", ErrMirrorUnavailable, err)
	}

	return &Mirror{Path: dir, Revision: resolveRevision(ctx, dir)}, nil
}

// clone performs a treeless, checkout-free clone into a temporary sibling of dir
// and renames it into place, so dir only ever holds a complete clone.
func (m *Mirrors) clone(ctx context.Context, url, dir string) error {
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrMirrorUnavailable, err)
	}

	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dir)+".clone-")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMirrorUnavailable, err)
	}
	defer os.RemoveAll(tmp)

	_, err = runGit(ctx, parent, "clone", "--quiet", "--filter=tree:0", "--no-checkout", "--", url, tmp)
	if err != nil {
		return classify(ErrMirrorUnavailable, "clone "+url, err)
	}

	if err := os.Rename(tmp, dir); err != nil {
		return fmt.Errorf("%w: %w", ErrMirrorUnavailable, err)
	}
	return nil
}

// verifyOrigin checks that the clone in dir was made from owner/project on the
// provider. The recorded origin may use another address form of the same
// repository, such as an ssh remote.
func (m *Mirrors) verifyOrigin(dir, owner, project string) error {
	f, err := os.Open(filepath.Join(dir, ".git", "config"))
	if err != nil {
		return fmt.Errorf("%w: %s is not a git clone: %w", ErrMirrorUnavailable, dir, err)
	}
	defer f.Close()

	raw := formatcfg.New()
	if err := formatcfg.NewDecoder(f).Decode(raw); err != nil {
		return fmt.Errorf("%w: unreadable git config in %s: %w", ErrMirrorUnavailable, dir, err)
	}

	origin := raw.Section("remote").Subsection("origin").Option("url")
	url := m.provider.CloneURL(owner, project)
	if sameRemote(origin, url) {
		return nil
	}

	if m.provider.MatchesURL(origin) {
		o, p := m.provider.ParseURL(origin)
		if strings.EqualFold(o, owner) && strings.EqualFold(p, project) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s mirrors %q, want %q", ErrMirrorUnavailable, dir, origin, url)
}

// sameRemote compares two remote addresses by endpoint, ignoring a .git suffix.
func sameRemote(a, b string) bool {
	ea, err := transport.NewEndpoint(a)
	if err != nil {
		return false
	}
	eb, err := transport.NewEndpoint(b)
	if err != nil {
		return false
	}

	norm := func(p string) string {
		return strings.TrimSuffix(strings.TrimSuffix(p, "/"), ".git")
	}

	return ea.Protocol == eb.Protocol &&
		strings.EqualFold(ea.Host, eb.Host) &&
		ea.Port == eb.Port &&
		norm(ea.Path) == norm(eb.Path)
}

// resolveRevision picks the remote default branch when known, else HEAD,
// else nothing for an empty repository.
func resolveRevision(ctx context.Context, dir string) string {
	for _, rev := range []string{originHead, "HEAD"} {
		if _, err := runGit(ctx, dir, "rev-parse", "--verify", "--quiet", rev+"^{commit}"); err == nil {
			return rev
		}
	}
	return ""
}
