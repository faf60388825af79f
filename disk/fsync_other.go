//go:build windows

package disk

import "os"

// fdatasync falls back to a full sync on platforms with no data-only
// fsync syscall exposed through golang.org/x/sys.
func fdatasync(f *os.File) error {
	return f.Sync()
}
