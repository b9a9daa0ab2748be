package pushover

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want []string
	}{
		{"short", "a\nb", 10, []string{"a\nb"}},
		{"line boundary", "aaaa\nbbbb\ncc", 9, []string{"aaaa\nbbbb", "cc"}},
		{"long line cut", "abcdefg", 3, []string{"abc", "def", "g"}},
		{"empty", "", 5, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, split(tt.in, tt.n))
		})
	}
}

func TestSplitKeepsEveryRune(t *testing.T) {
	form := strings.Repeat("* Damages overview: - dent on door\n", 60)
	chunks := split(form, maxMessageLen)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		require.LessOrEqual(t, len([]rune(c)), maxMessageLen)
	}
	require.Equal(t, strings.ReplaceAll(form, "\n", ""), strings.ReplaceAll(strings.Join(chunks, ""), "\n", ""))
}
