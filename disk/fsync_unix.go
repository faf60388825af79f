//go:build !windows

package disk

import (
	"os"

	"golang.org/x/sys/unix"
)

// fdatasync flushes file data but not metadata, matching spec.md's
// "fsyncs data (not metadata)" requirement for AllocatePage/WritePage —
// full data+metadata sync is reserved for Close.
func fdatasync(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
