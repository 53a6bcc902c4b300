package gitrepo

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// shortlogLine matches one `git shortlog -nse` line: count, name, <email>.
var shortlogLine = regexp.MustCompile(`^\s*(?P<commits>\d+)\s+(?P<name>[^<]*)\s+<(?P<email>[^>]*)>\s*$`)

// Summarize counts commits per author email over the mirror's revision.
// A mirror without commits has no contributors.
func Summarize(ctx context.Context, m *Mirror) (map[string]int, error) {
	if m.Revision == "" {
		return map[string]int{}, nil
	}

	// The revision must be explicit: without one shortlog reads stdin.
	out, err := runGit(ctx, m.Path, "shortlog", "--numbered", "--summary", "--email", m.Revision, "--")
	if err != nil {
		return nil, classify(ErrSummarizationFailed, "shortlog "+m.Path, err)
	}

	return ParseShortlog(out), nil
}

// ParseShortlog turns shortlog output into commit counts keyed by email.
// Lines that do not look like shortlog entries are skipped and counts for
// an email seen on several lines are summed.
func ParseShortlog(out string) map[string]int {
	commitsIdx := shortlogLine.SubexpIndex("commits")
	emailIdx := shortlogLine.SubexpIndex("email")

	counts := make(map[string]int)
	for _, line := range strings.Split(out, "\n") {
		match := shortlogLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		n, err := strconv.Atoi(match[commitsIdx])
		if err != nil {
			continue
		}

		email := match[emailIdx]
		if sum := counts[email] + n; sum >= counts[email] {
			counts[email] = sum
		}
	}

	return counts
}
