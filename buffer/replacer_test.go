package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRUReplacerVictimOrder(t *testing.T) {
	r := NewLRUReplacer()
	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3)
	require.Equal(t, 3, r.Size())

	id, ok := r.Victim()
	require.True(t, ok)
	require.Equal(t, 1, id, "least-recently-unpinned frame must be evicted first")

	id, ok = r.Victim()
	require.True(t, ok)
	require.Equal(t, 2, id)
}

func TestLRUReplacerPinRemovesFromEvictionSet(t *testing.T) {
	r := NewLRUReplacer()
	r.Unpin(1)
	r.Pin(1)
	require.Zero(t, r.Size())

	_, ok := r.Victim()
	require.False(t, ok)
}

func TestLRUReplacerReUnpinMovesToBack(t *testing.T) {
	r := NewLRUReplacer()
	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(1) // touching 1 again should make 2 the next victim

	id, ok := r.Victim()
	require.True(t, ok)
	require.Equal(t, 2, id)
}

func TestLRUReplacerVictimOnEmptyReturnsFalse(t *testing.T) {
	r := NewLRUReplacer()
	_, ok := r.Victim()
	require.False(t, ok)
}
