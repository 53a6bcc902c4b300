package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrMirrorUnavailable wraps every clone, fetch or mirror validation failure.
	ErrMirrorUnavailable = errors.New("mirror unavailable")
	// ErrSummarizationFailed wraps shortlog invocation failures.
	ErrSummarizationFailed = errors.New("summarization failed")
	// ErrRateLimited means the remote host refuses further requests.
	ErrRateLimited = errors.New("remote host rate limit reached")
)

// waitDelay bounds how long a killed git keeps its output pipes open
// through helper processes such as git-remote-https.
const waitDelay = 5 * time.Second

// CommandError is a failed git invocation.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// RateLimited reports whether git's stderr shows the remote throttling us.
func (e *CommandError) RateLimited() bool {
	s := strings.ToLower(e.Stderr)
	return strings.Contains(s, "rate limit") ||
		strings.Contains(s, "error: 429") ||
		strings.Contains(s, "too many requests")
}

// runGit executes git with args in dir and returns its stdout.
// The command never prompts for credentials.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%w)", ctxErr, err)
		}
		return stdout.String(), &CommandError{
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	return stdout.String(), nil
}

// classify wraps a git failure in kind, or in ErrRateLimited when the remote throttled us.
func classify(kind error, what string, err error) error {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.RateLimited() {
		return fmt.Errorf("%w: %s: %w", ErrRateLimited, what, err)
	}
	return fmt.Errorf("%w: %s: %w", kind, what, err)
}
