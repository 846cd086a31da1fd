// Package monitoring is a process-wide facade for error reporting.
package monitoring

import (
	"fmt"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	// CapturePanic reports a value obtained from recover.
	CapturePanic(v any, tags map[string]string)
	Flush(timeout time.Duration) bool
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any, map[string]string)       {}
func (NopMonitor) Flush(time.Duration) bool                  { return true }

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err != nil {
		current.CaptureException(err, tags)
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) bool { return current.Flush(d) }

// Go runs fn on a new goroutine. A panic is reported and converted into
// an error passed to onPanic, which may be nil.
func Go(name string, fn func(), onPanic func(error)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				current.CapturePanic(r, map[string]string{"goroutine": name})
				if onPanic != nil {
					onPanic(fmt.Errorf("%s: panic: %v", name, r))
				}
			}
		}()
		fn()
	}()
}
