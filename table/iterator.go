package table

import (
	"pagestore/buffer"
	"pagestore/page"
	"pagestore/pagestoreerr"
)

// Iterator walks a heap's live records in ascending (page id, slot id)
// order. It pre-fetches one record ahead so HasNext can answer without
// performing I/O. It takes no snapshot: mutating the heap while an
// iterator is open gives unspecified results.
type Iterator struct {
	pool *buffer.Pool

	curPageID page.ID
	curSlot   int32

	nextRID    RID
	nextRecord []byte
	exhausted  bool
}

func newIterator(pool *buffer.Pool, firstPageID page.ID) (*Iterator, error) {
	it := &Iterator{pool: pool, curPageID: firstPageID, curSlot: 0}
	if err := it.fetchNext(); err != nil {
		return nil, err
	}
	return it, nil
}

// fetchNext walks forward from (curPageID, curSlot) until it finds a
// live tuple or runs out of pages, buffering the result.
func (it *Iterator) fetchNext() error {
	for it.curPageID != noPage {
		frame, err := it.pool.FetchPage(it.curPageID)
		if err != nil {
			it.exhausted = true
			return err
		}
		sp := Wrap(&frame.Data)
		tupleCount := sp.TupleCount()

		for it.curSlot < tupleCount {
			slotID := it.curSlot
			it.curSlot++
			if record := sp.GetTuple(slotID); record != nil {
				it.nextRID = RID{PageID: it.curPageID, SlotID: slotID}
				it.nextRecord = record
				it.pool.UnpinPage(it.curPageID, false)
				return nil
			}
		}

		next := sp.NextPageID()
		it.pool.UnpinPage(it.curPageID, false)
		it.curPageID = next
		it.curSlot = 0
	}

	it.exhausted = true
	it.nextRecord = nil
	return nil
}

// HasNext reports whether a buffered record is available.
func (it *Iterator) HasNext() bool {
	return !it.exhausted
}

// Next returns the buffered record and its RID, then pre-fetches the
// following one. Calling Next after exhaustion returns
// pagestoreerr.ErrNoSuchElement.
func (it *Iterator) Next() (RID, []byte, error) {
	if it.exhausted {
		return RID{}, nil, pagestoreerr.ErrNoSuchElement
	}
	rid, record := it.nextRID, it.nextRecord
	if err := it.fetchNext(); err != nil {
		return rid, record, err
	}
	return rid, record, nil
}
