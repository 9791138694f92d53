package fault

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindMatching(t *testing.T) {
	err := New(LoadTimeout, "pageload.load", context.DeadlineExceeded)
	wrapped := fmt.Errorf("process https://example.com: %w", err)

	require.ErrorIs(t, wrapped, LoadTimeout)
	require.NotErrorIs(t, wrapped, SessionInitFailed)
	require.ErrorIs(t, wrapped, context.DeadlineExceeded)
	require.Equal(t, LoadTimeout, KindOf(wrapped))
	require.Equal(t, Unknown, KindOf(errors.New("plain")))
	require.Equal(t, "pageload.load: load timeout: context deadline exceeded", err.Error())
}

func TestKindString(t *testing.T) {
	kinds := []Kind{
		Unknown, SessionInitFailed, LoadTimeout, LoadFailed, ElementStale,
		PersistenceError, ClassificationError, InvalidInput, NotFound,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		name := k.String()
		require.NotContains(t, name, "kind(")
		require.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true

		parsed, ok := ParseKind(name)
		require.True(t, ok)
		require.Equal(t, k, parsed)
	}
	_, ok := ParseKind("kind(99)")
	require.False(t, ok)
	require.Equal(t, "kind(99)", Kind(99).String())
}
