package interprocess

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Queues opened with UnlinkOnClose are tracked here so their kernel objects
// can still be removed when the process dies to SIGINT/SIGTERM instead of a
// clean Close. Best effort only: a SIGKILL or a crash leaves the objects
// behind, like any named kernel resource.
var (
	exitUnlinkMu   sync.Mutex
	exitUnlinkOnce sync.Once
	exitUnlink     = make(map[string]Options)
)

func exitUnlinkKey(opt Options) string {
	return opt.Path + "\x00" + opt.Name
}

func registerExitUnlink(opt Options) {
	exitUnlinkOnce.Do(watchExitSignals)
	exitUnlinkMu.Lock()
	exitUnlink[exitUnlinkKey(opt)] = opt
	exitUnlinkMu.Unlock()
}

func unregisterExitUnlink(opt Options) {
	exitUnlinkMu.Lock()
	delete(exitUnlink, exitUnlinkKey(opt))
	exitUnlinkMu.Unlock()
}

func watchExitSignals() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-c
		exitUnlinkMu.Lock()
		for _, opt := range exitUnlink {
			_ = Unlink(opt)
		}
		exitUnlink = make(map[string]Options)
		exitUnlinkMu.Unlock()

		// Re-deliver the signal under the default action so the
		// process still terminates with the expected status.
		signal.Stop(c)
		p, err := os.FindProcess(os.Getpid())
		if err == nil {
			err = p.Signal(sig)
		}
		if err != nil {
			os.Exit(1)
		}
	}()
}
