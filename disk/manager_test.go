package disk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pagestore/page"
)

func openTemp(t *testing.T) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.db")
	m, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestAllocatePageIDsAreDenseAndMonotone(t *testing.T) {
	m := openTemp(t)

	for want := page.ID(0); want < 5; want++ {
		got, err := m.AllocatePage()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	require.EqualValues(t, 5, m.NumPages())
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	m := openTemp(t)

	id, err := m.AllocatePage()
	require.NoError(t, err)

	var src [page.Size]byte
	for i := range src {
		src[i] = byte(i)
	}
	require.NoError(t, m.WritePage(id, &src))

	var dst [page.Size]byte
	require.NoError(t, m.ReadPage(id, &dst))
	require.Equal(t, src, dst)
}

func TestReadWriteOutOfRangeRejected(t *testing.T) {
	m := openTemp(t)

	var buf [page.Size]byte
	require.Error(t, m.ReadPage(-1, &buf))
	require.Error(t, m.ReadPage(0, &buf))
	require.Error(t, m.WritePage(0, &buf))
}

func TestReopenRecomputesNumPagesFromFileSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")

	m1, err := Open(path)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := m1.AllocatePage()
		require.NoError(t, err)
	}
	require.NoError(t, m1.Close())

	m2, err := Open(path)
	require.NoError(t, err)
	defer m2.Close()
	require.EqualValues(t, 3, m2.NumPages())
}
