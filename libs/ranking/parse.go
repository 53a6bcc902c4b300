package ranking

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/gomantics/repograph/domains/repos"
)

// A ranking page lists every repository as four lines in this order.
var (
	projectLine = regexp.MustCompile(`<a class="list-group-item paginated_item" href="/[^/"]+/([^/"]+)">`)
	rankLine    = regexp.MustCompile(`^(\d+)\.$`)
	ownerLine   = regexp.MustCompile(`^([^/<>]+)/.+$`)
	starsLine   = regexp.MustCompile(`^(\d+)$`)
)

// Parse extracts the ranked repositories from a ranking page. Lines are matched
// against the project, rank, owner and stars patterns in turn; a repository is
// emitted each time the fourth pattern matches. Anything else is ignored.
func Parse(r io.Reader) ([]repos.Repo, error) {
	var (
		found   []repos.Repo
		step    int
		current repos.Repo
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		switch step {
		case 0:
			m := projectLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			current = repos.Repo{}
			current.Project = m[1]
		case 1:
			m := rankLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				continue
			}
			current.Rank = n
		case 2:
			m := ownerLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			current.Owner = strings.TrimSpace(m[1])
		case 3:
			m := starsLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				continue
			}
			current.Stars = &n
			found = append(found, current)
		}

		step = (step + 1) % 4
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}
	return found, nil
}
