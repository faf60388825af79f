package table

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"pagestore/page"
)

func newPage(t *testing.T, id, prev page.ID) (*Page, *[page.Size]byte) {
	t.Helper()
	var buf [page.Size]byte
	sp := Wrap(&buf)
	sp.Init(id, prev)
	return sp, &buf
}

func TestInitSetsHeaderFields(t *testing.T) {
	sp, _ := newPage(t, 5, 4)
	require.Equal(t, page.ID(5), sp.PageID())
	require.Equal(t, page.ID(4), sp.PrevPageID())
	require.Equal(t, page.ID(-1), sp.NextPageID())
	require.Zero(t, sp.TupleCount())
}

func TestInsertThenGetRoundTrips(t *testing.T) {
	sp, _ := newPage(t, 0, -1)

	slotID, err := sp.InsertTuple([]byte("hello"))
	require.NoError(t, err)
	require.Zero(t, slotID)

	got := sp.GetTuple(slotID)
	require.Equal(t, []byte("hello"), got)
	require.EqualValues(t, 1, sp.TupleCount())
}

func TestInsertMultipleTuplesPreservesOrder(t *testing.T) {
	sp, _ := newPage(t, 0, -1)

	s1, err := sp.InsertTuple([]byte("aaa"))
	require.NoError(t, err)
	s2, err := sp.InsertTuple([]byte("bbbb"))
	require.NoError(t, err)

	require.Equal(t, []byte("aaa"), sp.GetTuple(s1))
	require.Equal(t, []byte("bbbb"), sp.GetTuple(s2))
}

func TestInsertReturnsNegativeOneWhenPageFull(t *testing.T) {
	sp, _ := newPage(t, 0, -1)
	big := bytes.Repeat([]byte{'a'}, MaxRecordSize)

	slotID, err := sp.InsertTuple(big)
	require.NoError(t, err)
	require.Zero(t, slotID)

	overflow, err := sp.InsertTuple([]byte("x"))
	require.NoError(t, err)
	require.EqualValues(t, -1, overflow, "page has no room left; caller must allocate a new page")
}

func TestInsertOversizedRecordRejected(t *testing.T) {
	sp, _ := newPage(t, 0, -1)
	oversized := make([]byte, page.Size)

	slotID, err := sp.InsertTuple(oversized)
	require.Error(t, err)
	require.Zero(t, slotID)
	require.Zero(t, sp.TupleCount())
}

func TestInsertEmptyRecordRejected(t *testing.T) {
	sp, _ := newPage(t, 0, -1)
	_, err := sp.InsertTuple(nil)
	require.Error(t, err)
}

func TestMarkDeletedTombstonesAndRetiresSlot(t *testing.T) {
	sp, _ := newPage(t, 0, -1)
	slotID, err := sp.InsertTuple([]byte("a"))
	require.NoError(t, err)

	require.True(t, sp.MarkDeleted(slotID))
	require.Nil(t, sp.GetTuple(slotID))
	require.False(t, sp.MarkDeleted(slotID), "re-deleting a tombstone must fail")

	next, err := sp.InsertTuple([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, slotID+1, next, "slot ids are never reused after delete")
}

func TestUpdateTupleShrinkSucceedsGrowFails(t *testing.T) {
	sp, _ := newPage(t, 0, -1)
	slotID, err := sp.InsertTuple(bytes.Repeat([]byte{'x'}, 200))
	require.NoError(t, err)

	require.True(t, sp.UpdateTuple(slotID, bytes.Repeat([]byte{'z'}, 50)))
	require.Equal(t, bytes.Repeat([]byte{'z'}, 50), sp.GetTuple(slotID))

	require.False(t, sp.UpdateTuple(slotID, bytes.Repeat([]byte{'w'}, 51)))
	require.Equal(t, bytes.Repeat([]byte{'z'}, 50), sp.GetTuple(slotID), "failed update must not mutate the record")
}

func TestUpdateOutOfRangeOrTombstonedFails(t *testing.T) {
	sp, _ := newPage(t, 0, -1)
	require.False(t, sp.UpdateTuple(0, []byte("x")))

	slotID, err := sp.InsertTuple([]byte("a"))
	require.NoError(t, err)
	sp.MarkDeleted(slotID)
	require.False(t, sp.UpdateTuple(slotID, []byte("b")))
}

func TestDeleteTupleRequiresMatchingPageID(t *testing.T) {
	sp, _ := newPage(t, 9, -1)
	slotID, err := sp.InsertTuple([]byte("a"))
	require.NoError(t, err)

	require.EqualValues(t, -1, sp.DeleteTuple(RID{PageID: 1, SlotID: slotID}))
	require.EqualValues(t, slotID, sp.DeleteTuple(RID{PageID: 9, SlotID: slotID}))
}
