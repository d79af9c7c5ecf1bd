package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedact(t *testing.T) {
	id := strings.Repeat("a1", 32)
	got := redact([]any{id, "holder", int64(7)})
	require.Equal(t, []any{id[:12], "holder", int64(7)}, got)
}
