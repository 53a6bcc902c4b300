package harvest

import (
	"runtime"
	"strconv"
	"strings"
)

// ResolveConcurrency picks the concurrency limit: arg when it is a positive
// integer, else configured when positive, else the number of CPUs.
func ResolveConcurrency(arg string, configured int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(arg)); err == nil && n > 0 {
		return n
	}
	if configured > 0 {
		return configured
	}
	return runtime.NumCPU()
}
