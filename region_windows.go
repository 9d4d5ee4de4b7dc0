package interprocess

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mappingPrefix namespaces queue mappings among global kernel objects.
const mappingPrefix = `Global\CT_IP_`

// sharedRegion is a named page-file-backed mapping on Windows. The kernel
// keeps it alive while any process holds a handle and reclaims it when the
// last handle closes, so there is nothing to unlink.
type sharedRegion struct {
	handle  windows.Handle
	view    uintptr
	size    int64
	created bool
}

func openRegion(_, name string, capacity int64) (*sharedRegion, error) {
	namePtr, err := windows.UTF16PtrFromString(mappingPrefix + name)
	if err != nil {
		return nil, err
	}

	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil,
		windows.PAGE_READWRITE,
		uint32(uint64(capacity)>>32), uint32(uint64(capacity)),
		namePtr)
	if err != nil {
		return nil, fmt.Errorf("failed to create file mapping: %w", err)
	}
	// CreateFileMapping opens the existing object and reports
	// ERROR_ALREADY_EXISTS through the last error even on success.
	created := windows.GetLastError() != windows.ERROR_ALREADY_EXISTS

	view, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE|windows.FILE_MAP_READ,
		0, 0, uintptr(capacity))
	if err != nil {
		_ = windows.CloseHandle(h)
		return nil, fmt.Errorf("failed to map view: %w", err)
	}

	return &sharedRegion{handle: h, view: view, size: capacity, created: created}, nil
}

func (r *sharedRegion) base() unsafe.Pointer {
	return unsafe.Pointer(r.view)
}

func (r *sharedRegion) bytes() []byte {
	return unsafe.Slice((*byte)(r.base()), r.size)
}

func (r *sharedRegion) Close() {
	if r.view != 0 {
		_ = windows.UnmapViewOfFile(r.view)
		r.view = 0
	}
	if r.handle != 0 {
		_ = windows.CloseHandle(r.handle)
		r.handle = 0
	}
}

// unlinkRegion is a no-op on Windows; the mapping disappears with its last
// handle.
func unlinkRegion(_, _ string) error {
	return nil
}

func regionExists(_, name string) (bool, error) {
	namePtr, err := windows.UTF16PtrFromString(mappingPrefix + name)
	if err != nil {
		return false, err
	}
	h, err := windows.OpenFileMapping(windows.FILE_MAP_READ, false, namePtr)
	if err != nil {
		if err == windows.ERROR_FILE_NOT_FOUND {
			return false, nil
		}
		return false, err
	}
	_ = windows.CloseHandle(h)
	return true, nil
}
