package table

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRIDSerializeRoundTrips(t *testing.T) {
	rid := RID{PageID: 7, SlotID: 3}
	buf := rid.Serialize()
	require.Equal(t, rid, DeserializeRID(buf[:]))
}

func TestRIDOrderingMatchesByteOrder(t *testing.T) {
	pairs := []struct{ a, b RID }{
		{RID{0, 0}, RID{0, 1}},
		{RID{0, 5}, RID{1, 0}},
		{RID{1, 2}, RID{1, 3}},
	}
	for _, pr := range pairs {
		require.Equal(t, -1, pr.a.Compare(pr.b))
		require.Equal(t, 1, pr.b.Compare(pr.a))

		bufA := pr.a.Serialize()
		bufB := pr.b.Serialize()
		require.Negative(t, bytes.Compare(bufA[:], bufB[:]))
	}
}

func TestRIDCompareEqual(t *testing.T) {
	a := RID{PageID: 4, SlotID: 2}
	b := RID{PageID: 4, SlotID: 2}
	require.Zero(t, a.Compare(b))
}
