package monitoring

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingMonitor struct {
	mu     sync.Mutex
	errs   []error
	panics []any
}

func (m *recordingMonitor) CaptureException(err error, _ map[string]string) {
	m.mu.Lock()
	m.errs = append(m.errs, err)
	m.mu.Unlock()
}

func (m *recordingMonitor) CapturePanic(v any, _ map[string]string) {
	m.mu.Lock()
	m.panics = append(m.panics, v)
	m.mu.Unlock()
}

func (m *recordingMonitor) Flush(time.Duration) bool { return true }

func TestGoReportsPanic(t *testing.T) {
	rec := &recordingMonitor{}
	Init(rec)
	defer Init(NopMonitor{})

	got := make(chan error, 1)
	Go("worker", func() { panic("boom") }, func(err error) { got <- err })
	select {
	case err := <-got:
		if err == nil {
			t.Fatalf("expected error")
		}
	case <-time.After(time.Second):
		t.Fatalf("panic not reported")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.panics) != 1 || rec.panics[0] != "boom" {
		t.Fatalf("unexpected panics %v", rec.panics)
	}
}

func TestCaptureExceptionSkipsNil(t *testing.T) {
	rec := &recordingMonitor{}
	Init(rec)
	defer Init(NopMonitor{})
	CaptureException(nil, nil)
	CaptureException(errors.New("x"), nil)
	if len(rec.errs) != 1 {
		t.Fatalf("expected one captured error, got %d", len(rec.errs))
	}
}
