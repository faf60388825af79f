// Package disk implements the paged disk manager: append-only page
// allocation and positional read/write of whole pages against a single
// file. Operations are independent and address the file by absolute
// offset, so they may be invoked concurrently for different pages; the
// only shared mutable state is the monotone page counter.
package disk

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"pagestore/page"
	"pagestore/pagestoreerr"
)

// Manager owns one file opened for read+write, creating it if absent.
// Page ids are dense, start at 0, and are never recycled.
type Manager struct {
	file     *os.File
	path     string
	numPages atomic.Int64 // tracked as int64 internally; ids stay within page.ID (int32) range
	log      *logrus.Logger
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithLogger overrides the default (standard) logrus logger.
func WithLogger(l *logrus.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// Open opens (or creates) path and computes num_pages from the current
// file size. A size that is not a multiple of page.Size is tolerated
// with a warning — the trailing partial page is treated as if it does
// not exist.
func Open(path string, opts ...Option) (*Manager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, pagestoreerr.WrapIO(err, "disk: open %s", path)
	}

	m := &Manager{file: f, path: path, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(m)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, pagestoreerr.WrapIO(err, "disk: stat %s", path)
	}

	size := info.Size()
	if size%page.Size != 0 {
		m.log.Warnf("disk: file %s size %d is not a multiple of page size %d, trailing partial page ignored", path, size, page.Size)
	}
	m.numPages.Store(size / page.Size)

	m.log.Infof("disk: opened %s with %d pages", path, m.numPages.Load())
	return m, nil
}

// NumPages returns the current page count.
func (m *Manager) NumPages() int64 {
	return m.numPages.Load()
}

// AllocatePage atomically increments num_pages, appends a fully-zero
// page at the new offset, fsyncs data (not metadata), and returns the
// new id. On I/O failure the counter is rolled back.
func (m *Manager) AllocatePage() (page.ID, error) {
	id64 := m.numPages.Add(1) - 1
	id := page.ID(id64)
	offset := id64 * page.Size

	var zero [page.Size]byte
	if _, err := m.file.WriteAt(zero[:], offset); err != nil {
		m.numPages.Add(-1)
		return 0, pagestoreerr.WrapIO(err, "disk: allocate page %d", id)
	}
	if err := fdatasync(m.file); err != nil {
		m.numPages.Add(-1)
		return 0, pagestoreerr.WrapIO(err, "disk: fsync after allocating page %d", id)
	}

	m.log.Debugf("disk: allocated page %d (total=%d)", id, m.numPages.Load())
	return id, nil
}

// ReadPage validates 0 <= pageID < num_pages and reads exactly page.Size
// bytes into dst at offset pageID*page.Size, looping until the full page
// is read. A premature EOF is fatal (data corruption), not a short read.
func (m *Manager) ReadPage(pageID page.ID, dst *[page.Size]byte) error {
	if pageID < 0 || int64(pageID) >= m.numPages.Load() {
		return pagestoreerr.Invalidf("disk: page id %d out of range (num_pages=%d)", pageID, m.numPages.Load())
	}

	offset := int64(pageID) * page.Size
	var total int
	for total < page.Size {
		n, err := m.file.ReadAt(dst[total:], offset+int64(total))
		total += n
		if err != nil {
			return pagestoreerr.WrapIO(err, "disk: short read on page %d (got %d of %d bytes)", pageID, total, page.Size)
		}
	}

	m.log.Debugf("disk: read page %d", pageID)
	return nil
}

// WritePage validates as ReadPage does, writes exactly page.Size bytes
// at the page's offset, and fsyncs data.
func (m *Manager) WritePage(pageID page.ID, src *[page.Size]byte) error {
	if pageID < 0 || int64(pageID) >= m.numPages.Load() {
		return pagestoreerr.Invalidf("disk: page id %d out of range (num_pages=%d)", pageID, m.numPages.Load())
	}

	offset := int64(pageID) * page.Size
	if _, err := m.file.WriteAt(src[:], offset); err != nil {
		return pagestoreerr.WrapIO(err, "disk: write page %d", pageID)
	}
	if err := fdatasync(m.file); err != nil {
		return pagestoreerr.WrapIO(err, "disk: fsync page %d", pageID)
	}

	m.log.Debugf("disk: wrote page %d", pageID)
	return nil
}

// Close fsyncs data+metadata and closes the file.
func (m *Manager) Close() error {
	if err := m.file.Sync(); err != nil {
		return pagestoreerr.WrapIO(err, "disk: sync %s before close", m.path)
	}
	if err := m.file.Close(); err != nil {
		return pagestoreerr.WrapIO(err, "disk: close %s", m.path)
	}
	m.log.Infof("disk: closed %s", m.path)
	return nil
}

// Path returns the backing file path.
func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) String() string {
	return fmt.Sprintf("disk.Manager{path=%s, numPages=%d}", m.path, m.numPages.Load())
}
