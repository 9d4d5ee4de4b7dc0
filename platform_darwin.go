package interprocess

import "os"

// macOS limits semaphore names to 31 bytes including the NUL; the full name
// is "/" + tag + queue name, leaving 28 bytes for the queue name itself.
const maxNameLen = 28

func defaultQueueDir() string {
	return os.TempDir()
}
