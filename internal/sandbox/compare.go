package sandbox

import "strings"

// OutputsMatch compares actual program output against the expected output
// of a test case: line endings are normalized, trailing whitespace per line
// and surrounding blank lines are ignored, and the comparison is
// case-insensitive.
func OutputsMatch(actual, expected string) bool {
	return normalizeOutput(actual) == normalizeOutput(expected)
}

func normalizeOutput(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	joined := strings.Join(lines, "\n")
	return strings.ToLower(strings.Trim(joined, "\n"))
}
