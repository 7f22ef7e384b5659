package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputsMatch(t *testing.T) {
	cases := []struct {
		name     string
		actual   string
		expected string
		match    bool
	}{
		{"exact", "42", "42", true},
		{"trailing newline", "42\n", "42", true},
		{"crlf endings", "1\r\n2\r\n", "1\n2", true},
		{"trailing spaces per line", "1  \n2\t\n", "1\n2", true},
		{"surrounding blank lines", "\n\nhello\n\n", "hello", true},
		{"case insensitive", "Hello World", "hello world", true},
		{"different values", "42", "43", false},
		{"leading spaces significant", "  42", "42", false},
		{"missing line", "1\n2", "1\n2\n3", false},
		{"both empty", "", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.match, OutputsMatch(tc.actual, tc.expected))
		})
	}
}
