package table

import (
	"encoding/binary"

	"pagestore/page"
	"pagestore/pagestoreerr"
)

const (
	// HeaderSize is the fixed slotted-page header: page id, prev page id,
	// next page id, free-space pointer, tuple count, and 4 reserved
	// bytes, each a 4-byte big-endian field.
	HeaderSize = 24
	// SlotSize is the width of one slot directory entry: a 2-byte record
	// offset followed by a 2-byte record length.
	SlotSize = 4

	offPageID     = 0
	offPrevPageID = 4
	offNextPageID = 8
	offFreeSpace  = 12
	offTupleCount = 16

	// MaxRecordSize is the largest record that can ever fit a freshly
	// initialized page: the page minus the header minus one slot entry.
	MaxRecordSize = page.Size - HeaderSize - SlotSize

	noPage = int32(-1)
)

// Page is a thin, stateless view over a 4096-byte frame buffer,
// interpreting it as a header, a forward-growing slot directory, and a
// backward-growing record heap. It holds no lock of its own; the
// buffer pool's pin on the underlying frame is the caller's only
// synchronization with concurrent access to the same page, and even
// that does not make concurrent writers to the same page safe.
type Page struct {
	buf *[page.Size]byte
}

// Wrap returns a slotted-page view over buf. buf must already contain
// either a freshly zeroed page (to be initialized with Init) or a
// previously initialized one.
func Wrap(buf *[page.Size]byte) *Page {
	return &Page{buf: buf}
}

// Init writes a fresh header into the page: the given id and prev
// pointer, next = -1, free-space pointer at the end of the page, and a
// zero tuple count.
func (p *Page) Init(pageID, prevPageID page.ID) {
	p.putInt32(offPageID, pageID)
	p.putInt32(offPrevPageID, prevPageID)
	p.putInt32(offNextPageID, noPage)
	p.putInt32(offFreeSpace, page.Size)
	p.putInt32(offTupleCount, 0)
}

func (p *Page) getInt32(off int) int32 {
	return int32(binary.BigEndian.Uint32(p.buf[off : off+4]))
}

func (p *Page) putInt32(off int, v int32) {
	binary.BigEndian.PutUint32(p.buf[off:off+4], uint32(v))
}

// PageID returns the id this page was initialized with.
func (p *Page) PageID() page.ID { return p.getInt32(offPageID) }

// PrevPageID returns the previous page in the table chain, or -1.
func (p *Page) PrevPageID() page.ID { return p.getInt32(offPrevPageID) }

// SetPrevPageID rewrites the prev-page link.
func (p *Page) SetPrevPageID(id page.ID) { p.putInt32(offPrevPageID, id) }

// NextPageID returns the next page in the table chain, or -1.
func (p *Page) NextPageID() page.ID { return p.getInt32(offNextPageID) }

// SetNextPageID rewrites the next-page link.
func (p *Page) SetNextPageID(id page.ID) { p.putInt32(offNextPageID, id) }

// TupleCount returns the number of slots ever allocated in this page,
// including tombstoned ones.
func (p *Page) TupleCount() int32 { return p.getInt32(offTupleCount) }

func (p *Page) freeSpacePointer() int32 { return p.getInt32(offFreeSpace) }

func (p *Page) slotOffset(slotID int32) int {
	return HeaderSize + int(slotID)*SlotSize
}

func (p *Page) readSlot(slotID int32) (recOffset, recLength uint16) {
	off := p.slotOffset(slotID)
	recOffset = binary.BigEndian.Uint16(p.buf[off : off+2])
	recLength = binary.BigEndian.Uint16(p.buf[off+2 : off+4])
	return
}

func (p *Page) writeSlot(slotID int32, recOffset, recLength uint16) {
	off := p.slotOffset(slotID)
	binary.BigEndian.PutUint16(p.buf[off:off+2], recOffset)
	binary.BigEndian.PutUint16(p.buf[off+2:off+4], recLength)
}

func (p *Page) slotRegionEnd() int32 {
	return HeaderSize + SlotSize*p.TupleCount()
}

func (p *Page) freeSpace() int32 {
	return p.freeSpacePointer() - p.slotRegionEnd()
}

// InsertTuple copies record into the page's record heap and appends a
// new slot describing it, returning the new slot id. It returns -1
// (with no error) when the page lacks room, signaling the caller to
// allocate a new page; it returns an error only for a record that
// could never fit any page.
func (p *Page) InsertTuple(record []byte) (int32, error) {
	size := len(record)
	if size <= 0 {
		return 0, pagestoreerr.Invalidf("table: empty record")
	}
	if size > MaxRecordSize {
		return 0, pagestoreerr.Invalidf("table: record of %d bytes exceeds max %d", size, MaxRecordSize)
	}

	needed := int32(size) + SlotSize
	if p.freeSpace() < needed {
		return -1, nil
	}

	newFSP := p.freeSpacePointer() - int32(size)
	copy(p.buf[newFSP:newFSP+int32(size)], record)

	slotID := p.TupleCount()
	p.writeSlot(slotID, uint16(newFSP), uint16(size))
	p.putInt32(offFreeSpace, newFSP)
	p.putInt32(offTupleCount, slotID+1)

	return slotID, nil
}

// GetTuple returns the bytes stored at slotID, or nil if the slot is
// out of range or tombstoned.
func (p *Page) GetTuple(slotID int32) []byte {
	if slotID < 0 || slotID >= p.TupleCount() {
		return nil
	}
	off, length := p.readSlot(slotID)
	if length == 0 {
		return nil
	}
	out := make([]byte, length)
	copy(out, p.buf[off:int(off)+int(length)])
	return out
}

// UpdateTuple overwrites the record at slotID in place with newRecord,
// which must be no larger than the slot's current size. It returns
// false (making no change) for an out-of-range slot, a tombstoned
// slot, or a newRecord larger than the original.
func (p *Page) UpdateTuple(slotID int32, newRecord []byte) bool {
	if slotID < 0 || slotID >= p.TupleCount() {
		return false
	}
	off, length := p.readSlot(slotID)
	if length == 0 {
		return false
	}
	if len(newRecord) > int(length) {
		return false
	}

	copy(p.buf[off:int(off)+len(newRecord)], newRecord)
	p.writeSlot(slotID, off, uint16(len(newRecord)))
	return true
}

// MarkDeleted tombstones slotID by setting its length to 0. Returns
// false for an out-of-range or already-tombstoned slot. The slot id is
// never reused afterward.
func (p *Page) MarkDeleted(slotID int32) bool {
	if slotID < 0 || slotID >= p.TupleCount() {
		return false
	}
	off, length := p.readSlot(slotID)
	if length == 0 {
		return false
	}
	p.writeSlot(slotID, off, 0)
	return true
}

// DeleteTuple is MarkDeleted addressed by RID instead of slot id; rid
// must name this page.
func (p *Page) DeleteTuple(rid RID) int32 {
	if rid.PageID != p.PageID() {
		return -1
	}
	if !p.MarkDeleted(rid.SlotID) {
		return -1
	}
	return rid.SlotID
}
