// Package table implements the slotted-page record layout and the
// per-table doubly-linked page chain built on top of it: a thin view
// over a buffer-pool frame for record-level CRUD, and a heap that
// chains those views into an insert/scan surface for one table.
package table

import (
	"encoding/binary"

	"pagestore/page"
)

// RIDSize is the wire size of a serialized RID: a 4-byte page id
// followed by a 4-byte slot id, both big-endian.
const RIDSize = 8

// RID identifies one record: the page it lives on and its slot within
// that page's directory. It is stable from insertion until the record
// is explicitly deleted; an update preserves it.
type RID struct {
	PageID page.ID
	SlotID int32
}

// Compare returns -1, 0, or 1 ordering r before, equal to, or after
// other, lexicographically by (PageID, SlotID) — the same order as the
// byte-wise comparison of their serialized forms.
func (r RID) Compare(other RID) int {
	if r.PageID != other.PageID {
		if r.PageID < other.PageID {
			return -1
		}
		return 1
	}
	switch {
	case r.SlotID < other.SlotID:
		return -1
	case r.SlotID > other.SlotID:
		return 1
	default:
		return 0
	}
}

// Serialize writes r as 8 bytes: page id (int32 BE) then slot id
// (int32 BE).
func (r RID) Serialize() [RIDSize]byte {
	var buf [RIDSize]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(r.PageID))
	binary.BigEndian.PutUint32(buf[4:8], uint32(r.SlotID))
	return buf
}

// DeserializeRID reads the wire format Serialize produces. The caller
// must supply exactly RIDSize bytes.
func DeserializeRID(buf []byte) RID {
	return RID{
		PageID: page.ID(binary.BigEndian.Uint32(buf[0:4])),
		SlotID: int32(binary.BigEndian.Uint32(buf[4:8])),
	}
}
