package bootstrap

import "sync/atomic"

type factorySlot struct {
	f ServiceFactory
}

var processFactory atomic.Pointer[factorySlot]

// SetProcessServiceFactory publishes f as the process-wide service
// factory. It lives until process exit. Passing nil clears the slot.
func SetProcessServiceFactory(f ServiceFactory) {
	if f == nil {
		processFactory.Store(nil)
		return
	}
	processFactory.Store(&factorySlot{f: f})
}

// ProcessServiceFactory returns the process-wide factory, if published.
func ProcessServiceFactory() (ServiceFactory, bool) {
	slot := processFactory.Load()
	if slot == nil {
		return nil, false
	}
	return slot.f, true
}
