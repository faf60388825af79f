package table

import (
	"github.com/sirupsen/logrus"

	"pagestore/buffer"
	"pagestore/page"
)

// Heap is one table's storage: a doubly-linked chain of slotted pages
// backed by a shared buffer pool. FirstPageID is the heap's durable
// handle — a catalog persists it and nothing else to reopen the heap
// later.
type Heap struct {
	firstPageID page.ID
	lastPageID  page.ID
	pool        *buffer.Pool
	log         *logrus.Logger
}

// Option configures a Heap at construction time.
type Option func(*Heap)

// WithLogger overrides the default (standard) logrus logger.
func WithLogger(l *logrus.Logger) Option {
	return func(h *Heap) {
		if l != nil {
			h.log = l
		}
	}
}

// New allocates a fresh single-page heap: its first page is also its
// last, prev = -1, and it starts with zero live tuples.
func New(pool *buffer.Pool, opts ...Option) (*Heap, error) {
	h := &Heap{pool: pool, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(h)
	}

	frame, err := pool.NewPage()
	if err != nil {
		return nil, err
	}
	sp := Wrap(&frame.Data)
	sp.Init(frame.PageID, noPage)

	h.firstPageID = frame.PageID
	h.lastPageID = frame.PageID
	pool.UnpinPage(frame.PageID, true)

	h.log.Infof("table: new heap, first page %d", h.firstPageID)
	return h, nil
}

// Open reattaches to an existing heap given its first page id,
// re-deriving the last page id by walking the next-page chain. This
// walk is O(pages in the heap); it runs once, at open, not per
// operation.
func Open(firstPageID page.ID, pool *buffer.Pool, opts ...Option) (*Heap, error) {
	h := &Heap{pool: pool, firstPageID: firstPageID}
	h.log = logrus.StandardLogger()
	for _, opt := range opts {
		opt(h)
	}

	current := firstPageID
	for {
		frame, err := pool.FetchPage(current)
		if err != nil {
			return nil, err
		}
		next := Wrap(&frame.Data).NextPageID()
		pool.UnpinPage(current, false)

		if next == noPage {
			h.lastPageID = current
			break
		}
		current = next
	}

	h.log.Infof("table: reopened heap, first page %d, last page %d", h.firstPageID, h.lastPageID)
	return h, nil
}

// FirstPageID returns the heap's persistent handle.
func (h *Heap) FirstPageID() page.ID { return h.firstPageID }

// Insert appends record to the tail page, overflowing into a freshly
// allocated and linked page when the tail is full, and returns the
// record's new RID.
func (h *Heap) Insert(record []byte) (RID, error) {
	tailFrame, err := h.pool.FetchPage(h.lastPageID)
	if err != nil {
		return RID{}, err
	}
	tail := Wrap(&tailFrame.Data)

	slotID, err := tail.InsertTuple(record)
	if err != nil {
		h.pool.UnpinPage(h.lastPageID, false)
		return RID{}, err
	}
	if slotID >= 0 {
		rid := RID{PageID: h.lastPageID, SlotID: slotID}
		h.pool.UnpinPage(h.lastPageID, true)
		return rid, nil
	}

	// Tail is full; allocate a new page and link it after the tail.
	newFrame, err := h.pool.NewPage()
	if err != nil {
		h.pool.UnpinPage(h.lastPageID, false)
		return RID{}, err
	}
	newPage := Wrap(&newFrame.Data)
	newPage.Init(newFrame.PageID, h.lastPageID)

	newSlotID, err := newPage.InsertTuple(record)
	if err != nil {
		h.pool.UnpinPage(h.lastPageID, false)
		h.pool.UnpinPage(newFrame.PageID, false)
		return RID{}, err
	}

	tail.SetNextPageID(newFrame.PageID)
	h.pool.UnpinPage(h.lastPageID, true)
	h.pool.UnpinPage(newFrame.PageID, true)

	h.lastPageID = newFrame.PageID
	return RID{PageID: newFrame.PageID, SlotID: newSlotID}, nil
}

// Get returns the record named by rid, or nil if it does not exist or
// has been deleted. A page that cannot be fetched from the buffer pool
// is logged as a warning and also reported as nil with no error.
func (h *Heap) Get(rid RID) ([]byte, error) {
	frame, err := h.pool.FetchPage(rid.PageID)
	if err != nil {
		h.log.Warnf("table: get of page %d slot %d failed: %v", rid.PageID, rid.SlotID, err)
		return nil, nil
	}
	record := Wrap(&frame.Data).GetTuple(rid.SlotID)
	h.pool.UnpinPage(rid.PageID, false)
	return record, nil
}

// Update overwrites rid's record in place with newRecord, which must
// fit within the original slot's size. Returns false on a failed
// update (see Page.UpdateTuple) without making the caller retry I/O.
func (h *Heap) Update(rid RID, newRecord []byte) (bool, error) {
	frame, err := h.pool.FetchPage(rid.PageID)
	if err != nil {
		return false, err
	}
	ok := Wrap(&frame.Data).UpdateTuple(rid.SlotID, newRecord)
	h.pool.UnpinPage(rid.PageID, ok)
	return ok, nil
}

// MarkDeleted tombstones rid's slot, permanently retiring it within
// its page.
func (h *Heap) MarkDeleted(rid RID) (bool, error) {
	frame, err := h.pool.FetchPage(rid.PageID)
	if err != nil {
		return false, err
	}
	ok := Wrap(&frame.Data).MarkDeleted(rid.SlotID)
	h.pool.UnpinPage(rid.PageID, ok)
	return ok, nil
}

// Iterator returns a forward iterator over this heap's live records in
// ascending (page id, slot id) order.
func (h *Heap) Iterator() (*Iterator, error) {
	return newIterator(h.pool, h.firstPageID)
}
