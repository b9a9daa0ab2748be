package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voice-form/internal/domain"
)

func TestAppendAddsBulletLinesAfterExisting(t *testing.T) {
	t.Parallel()

	b := domain.FieldBuffer{}.Append("damages", "dented hood")
	b = b.Append("damages", "scratched door next point broken mirror")

	require.Equal(t, []string{"- dented hood", "- scratched door", "- broken mirror"}, b.Lines("damages"))
}

func TestAppendDoesNotModifyReceiver(t *testing.T) {
	t.Parallel()

	original := domain.FieldBuffer{"a": {"- one"}}
	updated := original.Append("a", "two")

	require.Equal(t, []string{"- one"}, original["a"])
	require.Equal(t, []string{"- one", "- two"}, updated["a"])

	updated["a"][0] = "changed"
	require.Equal(t, "- one", original["a"][0])
}

func TestAppendWithOnlySeparatorAddsNothing(t *testing.T) {
	t.Parallel()

	b := domain.FieldBuffer{}.Append("a", "  next point  ")
	require.False(t, b.Filled("a"))
}

func TestClearIsIdempotent(t *testing.T) {
	t.Parallel()

	b := domain.FieldBuffer{"a": {"- one", "- two"}}
	once := b.Clear("a")
	twice := once.Clear("a")

	require.Empty(t, once["a"])
	require.Equal(t, once, twice)
	require.Len(t, b["a"], 2)
}

func TestRemoveLastLine(t *testing.T) {
	t.Parallel()

	b := domain.FieldBuffer{"a": {"- one", "- two"}}
	b = b.RemoveLastLine("a")
	require.Equal(t, []string{"- one"}, b["a"])

	b = b.RemoveLastLine("a")
	require.Empty(t, b["a"])
}

func TestRemoveLastLineOnEmptyFieldIsNoop(t *testing.T) {
	t.Parallel()

	b := domain.FieldBuffer{"a": {"- one"}}
	got := b.RemoveLastLine("missing")
	require.Equal(t, b, got)
	require.Equal(t, []string{"- one"}, got["a"])
	require.Empty(t, got["missing"])
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	b := domain.FieldBuffer{"a": {"- one"}}
	c := b.Clone()
	c["a"] = append(c["a"], "- two")
	require.Len(t, b["a"], 1)
}
