package interprocess

// NAME_MAX leaves plenty of room on Linux; keep space for the "sem." and
// signal-tag prefixes of derived object names.
const maxNameLen = 240

func defaultQueueDir() string {
	return "/dev/shm"
}
