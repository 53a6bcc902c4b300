package gitrepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseShortlog(t *testing.T) {
	testCases := []struct {
		name string
		out  string
		want map[string]int
	}{
		{
			name: "same email on several lines is summed",
			out:  "   3  Jane Doe <jane@example.com>\n   1  Jane Doe <jane@example.com>\n   ",
			want: map[string]int{"jane@example.com": 4},
		},
		{
			name: "tab separated git output",
			out:  "    12\tAda Lovelace <ada@example.com>\n     2\tCharles Babbage <cb@example.com>\n",
			want: map[string]int{"ada@example.com": 12, "cb@example.com": 2},
		},
		{
			name: "malformed and blank lines are skipped",
			out:  "\n   x  Not A Count <a@b.c>\nmerge summary\n   5  No Email\n   7  Grace <grace@example.com>\r\n",
			want: map[string]int{"grace@example.com": 7},
		},
		{
			name: "empty email is still a key",
			out:  "   2  Anonymous <>\n",
			want: map[string]int{"": 2},
		},
		{
			name: "count overflowing int is skipped",
			out:  "   99999999999999999999999  Big <big@example.com>\n   1  Small <small@example.com>\n",
			want: map[string]int{"small@example.com": 1},
		},
		{
			name: "no output",
			out:  "",
			want: map[string]int{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseShortlog(tc.out))
		})
	}
}

func TestCommandError_RateLimited(t *testing.T) {
	testCases := []struct {
		stderr string
		want   bool
	}{
		{stderr: "fatal: unable to access 'https://github.com/a/b.git/': The requested URL returned error: 429", want: true},
		{stderr: "remote: API rate limit exceeded", want: true},
		{stderr: "remote: Repository not found.\nfatal: repository 'https://github.com/a/b.git/' not found", want: false},
		{stderr: "", want: false},
	}

	for _, tc := range testCases {
		err := &CommandError{Args: []string{"clone"}, Stderr: tc.stderr}
		assert.Equal(t, tc.want, err.RateLimited(), tc.stderr)
	}
}
