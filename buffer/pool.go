// Package buffer implements the LRU replacer and the buffer pool
// manager: a fixed array of frames, a page-id→frame map, a free list,
// and pin/unpin/eviction semantics mediating every access to cached
// pages. A single coarse mutex protects every public operation; the
// core's correctness does not rely on finer-grained locking.
package buffer

import (
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"pagestore/disk"
	"pagestore/page"
	"pagestore/pagestoreerr"
)

// Pool owns the frame array, the page table, the free list, the
// replacer, and a reference to the disk manager.
type Pool struct {
	mu sync.Mutex

	frames    []*page.Frame
	pageTable map[page.ID]int // page id -> frame index
	freeList  []int         // indices of currently-empty frames
	replacer  Replacer
	disk      *disk.Manager
	log       *logrus.Logger
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithLogger overrides the default (standard) logrus logger.
func WithLogger(l *logrus.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}

// WithReplacer overrides the default LRU replacer — present so a future
// eviction policy can be swapped in without changing the pool's public
// contract.
func WithReplacer(r Replacer) Option {
	return func(p *Pool) {
		if r != nil {
			p.replacer = r
		}
	}
}

// NewPool constructs a buffer pool with poolSize frames, all initially
// free.
func NewPool(poolSize int, dm *disk.Manager, opts ...Option) *Pool {
	frames := make([]*page.Frame, poolSize)
	freeList := make([]int, poolSize)
	for i := range frames {
		frames[i] = page.NewFrame()
		freeList[i] = i
	}

	p := &Pool{
		frames:    frames,
		pageTable: make(map[page.ID]int, poolSize),
		freeList:  freeList,
		replacer:  NewLRUReplacer(),
		disk:      dm,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.log.Infof("buffer: pool initialized with %d frames", poolSize)
	return p
}

// FetchPage returns the frame holding pageID, pinned for the caller. On
// a cache hit the frame is reused directly; on a miss a victim frame is
// acquired (free list first, then the replacer), flushed if dirty and
// occupied, then repurposed for pageID.
func (p *Pool) FetchPage(pageID page.ID) (*page.Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if idx, ok := p.pageTable[pageID]; ok {
		frame := p.frames[idx]
		frame.Pin()
		p.replacer.Pin(idx)
		p.log.Debugf("buffer: HIT page=%d frame=%d pins=%d", pageID, idx, frame.PinCount)
		return frame, nil
	}

	idx, err := p.acquireVictimLocked()
	if err != nil {
		return nil, err
	}

	frame := p.frames[idx]
	frame.Reset()
	if err := p.disk.ReadPage(pageID, &frame.Data); err != nil {
		p.freeList = append(p.freeList, idx)
		return nil, err
	}

	frame.PageID = pageID
	p.pageTable[pageID] = idx
	frame.Pin()
	p.log.Debugf("buffer: MISS page=%d loaded into frame=%d", pageID, idx)
	return frame, nil
}

// UnpinPage decrements the pin count for pageID and ORs isDirty into the
// frame's dirty flag. A page not present in the pool, or one whose pin
// count is already zero, is a consistency warning, logged; the pin
// count saturates at zero. When the pin count reaches
// zero the frame becomes eligible for eviction.
func (p *Pool) UnpinPage(pageID page.ID, isDirty bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pageID]
	if !ok {
		p.log.Warnf("buffer: unpin of page %d not in pool", pageID)
		return
	}

	frame := p.frames[idx]
	if isDirty {
		frame.Dirty = true
	}
	if frame.PinCount == 0 {
		p.log.Warnf("buffer: unpin of page %d with pin count already zero", pageID)
	}
	frame.Unpin()

	if frame.PinCount == 0 {
		p.replacer.Unpin(idx)
		p.log.Debugf("buffer: page %d unpinned (frame=%d, now evictable)", pageID, idx)
	} else {
		p.log.Debugf("buffer: page %d unpinned (frame=%d, pins=%d)", pageID, idx, frame.PinCount)
	}
}

// NewPage allocates a fresh page id from the disk manager, acquires a
// victim frame exactly as FetchPage does, and returns it pinned with a
// zero-filled buffer. If no victim is available the already-allocated
// on-disk page id is not returned to the allocator — see SPEC_FULL.md's
// Open Question #1; this is a deliberate, inherited, non-fix.
func (p *Pool) NewPage() (*page.Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pageID, err := p.disk.AllocatePage()
	if err != nil {
		return nil, err
	}

	idx, err := p.acquireVictimLocked()
	if err != nil {
		return nil, err
	}

	frame := p.frames[idx]
	frame.Reset()
	frame.PageID = pageID
	frame.Dirty = true
	p.pageTable[pageID] = idx
	frame.Pin()

	p.log.Infof("buffer: created page %d (frame=%d)", pageID, idx)
	return frame, nil
}

// FlushPage writes pageID to disk if present and clears its dirty flag,
// returning whether the page was present in the pool.
func (p *Pool) FlushPage(pageID page.ID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushLocked(pageID)
}

func (p *Pool) flushLocked(pageID page.ID) (bool, error) {
	idx, ok := p.pageTable[pageID]
	if !ok {
		p.log.Warnf("buffer: flush of page %d not in pool", pageID)
		return false, nil
	}

	frame := p.frames[idx]
	if err := p.disk.WritePage(pageID, &frame.Data); err != nil {
		return false, err
	}
	frame.Dirty = false
	p.log.Debugf("buffer: flushed page %d (frame=%d)", pageID, idx)
	return true, nil
}

// FlushAllPages writes every currently-cached page to disk, used at
// close and for externally requested checkpoints.
func (p *Pool) FlushAllPages() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for pageID := range p.pageTable {
		if _, err := p.flushLocked(pageID); err != nil {
			return err
		}
	}
	p.log.Infof("buffer: flushed %d pages", len(p.pageTable))
	return nil
}

// DeletePage removes pageID from the cache, provided its pin count is
// zero, returning the frame to the free list. On-disk space is not
// reclaimed. Returns false if the page is absent or still pinned.
func (p *Pool) DeletePage(pageID page.ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pageID]
	if !ok {
		return false
	}

	frame := p.frames[idx]
	if frame.PinCount > 0 {
		p.log.Warnf("buffer: cannot delete pinned page %d (pins=%d)", pageID, frame.PinCount)
		return false
	}

	delete(p.pageTable, pageID)
	p.replacer.Remove(idx)
	frame.Reset()
	p.freeList = append(p.freeList, idx)

	p.log.Infof("buffer: deleted page %d (frame=%d)", pageID, idx)
	return true
}

// Close flushes every cached page and clears the pool's bookkeeping.
func (p *Pool) Close() error {
	if err := p.FlushAllPages(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pageTable = make(map[page.ID]int, len(p.frames))
	p.freeList = p.freeList[:0]
	for i := range p.frames {
		p.replacer.Remove(i)
		p.frames[i].Reset()
		p.freeList = append(p.freeList, i)
	}
	p.log.Infof("buffer: pool closed. %s", p.statsLocked())
	return nil
}

// acquireVictimLocked implements the eviction algorithm common to
// FetchPage and NewPage: poll the free list first, then ask the
// replacer for a victim; if the chosen frame is occupied, flush it if
// dirty and remove it from the page table.
func (p *Pool) acquireVictimLocked() (int, error) {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return idx, nil
	}

	idx, ok := p.replacer.Victim()
	if !ok {
		return 0, pagestoreerr.ErrAllFramesPinned
	}

	frame := p.frames[idx]
	if frame.PageID != -1 {
		if frame.Dirty {
			if err := p.disk.WritePage(frame.PageID, &frame.Data); err != nil {
				return 0, err
			}
			frame.Dirty = false
		}
		delete(p.pageTable, frame.PageID)
	}
	return idx, nil
}

// Stats summarizes the pool's current occupancy.
type Stats struct {
	PoolSize   int
	Used       int
	Free       int
	Dirty      int
	Pinned     int
	Evictable  int
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"BufferPool Stats: poolSize=%s, used=%s, free=%s, dirty=%s, pinned=%s, evictable=%s",
		humanize.Comma(int64(s.PoolSize)), humanize.Comma(int64(s.Used)), humanize.Comma(int64(s.Free)),
		humanize.Comma(int64(s.Dirty)), humanize.Comma(int64(s.Pinned)), humanize.Comma(int64(s.Evictable)),
	)
}

// Stats returns pool size, used frames, free frames, dirty pages,
// pinned pages, and the evictable count.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statsLocked()
}

func (p *Pool) statsLocked() Stats {
	s := Stats{PoolSize: len(p.frames), Evictable: p.replacer.Size()}
	s.Used = len(p.pageTable)
	s.Free = len(p.freeList)
	for _, f := range p.frames {
		if f.PageID == -1 {
			continue
		}
		if f.Dirty {
			s.Dirty++
		}
		if f.PinCount > 0 {
			s.Pinned++
		}
	}
	return s
}
