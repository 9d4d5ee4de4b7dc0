//go:build unix

package interprocess

import (
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Region files are created world-accessible so every intended participant
// can attach regardless of which user created the queue first.
const regionPerm = 0o777

// sharedRegion is a named fixed-size shared memory region mapped into this
// process. On POSIX it is a memory-mapped file under the queue directory;
// the file persists until explicitly unlinked, so a queue survives all of
// its participants exiting.
type sharedRegion struct {
	fd      int
	mem     []byte
	size    int64
	created bool
}

func openRegion(dir, name string, capacity int64) (*sharedRegion, error) {
	r := &sharedRegion{fd: -1}
	path := filepath.Join(dir, name)

	fd, err := unix.Open(path, unix.O_CREAT|unix.O_RDWR, regionPerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open region %s: %w", path, err)
	}
	r.fd = fd

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to fstat region: %w", err)
	}

	// A zero-length file is ours to initialize; ftruncate zero-fills it.
	r.created = stat.Size == 0
	if r.created {
		if err := unix.Ftruncate(fd, capacity); err != nil {
			r.Close()
			return nil, fmt.Errorf("failed to ftruncate region: %w", err)
		}
	} else if stat.Size != capacity {
		r.Close()
		return nil, fmt.Errorf("region %s has size %d, want %d: %w",
			path, stat.Size, capacity, os.ErrInvalid)
	}

	mem, err := unix.Mmap(fd, 0, int(capacity),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to mmap region: %w", err)
	}
	r.mem = mem
	r.size = capacity
	return r, nil
}

func (r *sharedRegion) base() unsafe.Pointer {
	return unsafe.Pointer(&r.mem[0])
}

func (r *sharedRegion) bytes() []byte {
	return r.mem
}

// Close releases the mapping. The backing file stays on disk until Unlink.
func (r *sharedRegion) Close() {
	if r.mem != nil {
		_ = unix.Munmap(r.mem)
		r.mem = nil
	}
	if r.fd >= 0 {
		_ = unix.Close(r.fd)
		r.fd = -1
	}
}

// unlinkRegion removes the backing file of a region.
func unlinkRegion(dir, name string) error {
	err := unix.Unlink(filepath.Join(dir, name))
	if err == unix.ENOENT {
		return os.ErrNotExist
	}
	return err
}

// regionExists reports whether the backing file of a region is present.
func regionExists(dir, name string) (bool, error) {
	_, err := os.Stat(filepath.Join(dir, name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
