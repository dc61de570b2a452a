package contextkey

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_ChildLookupFallsThroughToAncestor(t *testing.T) {
	t.Parallel()

	tr := NewTree()
	require.NoError(t, tr.Set(tr.Root(), "language", "go"))

	child, err := tr.CreateChild(tr.Root())
	require.NoError(t, err)

	v, ok := tr.Get(child, "language")
	require.True(t, ok)
	assert.Equal(t, "go", v)
}

func TestTree_ChildOverridesAncestorValue(t *testing.T) {
	t.Parallel()

	tr := NewTree()
	require.NoError(t, tr.Set(tr.Root(), "language", "go"))

	child, err := tr.CreateChild(tr.Root())
	require.NoError(t, err)
	require.NoError(t, tr.Set(child, "language", "python"))

	v, _ := tr.Get(child, "language")
	assert.Equal(t, "python", v)

	rootV, _ := tr.Get(tr.Root(), "language")
	assert.Equal(t, "go", rootV)
}

func TestTree_RootCannotBeDisposed(t *testing.T) {
	t.Parallel()

	tr := NewTree()
	err := tr.Dispose(tr.Root())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRootDisposal))
}

func TestTree_DisposeFailsWithOutstandingLookup(t *testing.T) {
	t.Parallel()

	tr := NewTree()
	child, err := tr.CreateChild(tr.Root())
	require.NoError(t, err)

	tr.BeginLookup(child)
	err = tr.Dispose(child)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutstandingLookups))

	tr.EndLookup(child)
	assert.NoError(t, tr.Dispose(child))
}

func TestTree_DisposeRecursivelyRemovesChildren(t *testing.T) {
	t.Parallel()

	tr := NewTree()
	parent, err := tr.CreateChild(tr.Root())
	require.NoError(t, err)
	grandchild, err := tr.CreateChild(parent)
	require.NoError(t, err)

	require.NoError(t, tr.Dispose(parent))

	_, ok := tr.Get(grandchild, "anything")
	assert.False(t, ok)
}

func TestTree_GetMissingKeyReturnsFalse(t *testing.T) {
	t.Parallel()

	tr := NewTree()
	_, ok := tr.Get(tr.Root(), "missing")
	assert.False(t, ok)
}

func TestTree_CollectAllValuesMergesChildOverAncestor(t *testing.T) {
	t.Parallel()

	tr := NewTree()
	require.NoError(t, tr.Set(tr.Root(), "rootKey", "v"))

	child, err := tr.CreateChild(tr.Root())
	require.NoError(t, err)
	require.NoError(t, tr.Set(child, "childKey", "c"))
	require.NoError(t, tr.Set(child, "rootKey", "v2"))

	values, err := tr.CollectAllValues(child)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"rootKey": "v2", "childKey": "c"}, values)
}

func TestTree_CollectAllValuesOnUnknownNodeFails(t *testing.T) {
	t.Parallel()

	tr := NewTree()
	_, err := tr.CollectAllValues(999)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestTree_LookupBracketsOutstandingCounter(t *testing.T) {
	t.Parallel()

	tr := NewTree()
	require.NoError(t, tr.Set(tr.Root(), "k", "v"))

	v, ok := tr.Lookup(tr.Root(), "k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}
