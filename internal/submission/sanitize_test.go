// internal/submission/sanitize_test.go
//
// Run: go test ./internal/submission -v

package submission

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	// A two-byte rune straddling the cap must be dropped whole, never split
	// into a mangled trailing byte.
	s := strings.Repeat("a", maxSingleLine-1) + "é!"

	got := singleLine(s)
	assert.True(t, utf8.ValidString(got), "truncated value must stay valid UTF-8")
	assert.Equal(t, maxSingleLine-1, len(got))
	assert.True(t, strings.HasSuffix(got, "a"))

	// Values at or under the cap pass through untouched.
	assert.Equal(t, "héllo", singleLine("héllo"))
}
