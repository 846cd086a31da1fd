package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1vyadharsh1n1/MetroX/config"
	"github.com/d1vyadharsh1n1/MetroX/core/events"
	"github.com/d1vyadharsh1n1/MetroX/core/execution"
	"github.com/d1vyadharsh1n1/MetroX/core/modlog"
	"github.com/d1vyadharsh1n1/MetroX/core/override"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Simulator.Seed = 11
	cfg.Oracle.Seed = 3
	return cfg
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestCoreRunOnce(t *testing.T) {
	cfg := testConfig(t)
	cfg.ModLog = modlog.Config{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "modlog.db")}
	core, err := NewCore(cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, core.Close()) }()

	sub := core.Bus.Subscribe()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := core.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, st.IsRunning)
	assert.Equal(t, 25, core.Store.Len())

	_, recs, err := core.History.Latest(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 25)

	sawSchedule := false
	for !sawSchedule {
		select {
		case ev := <-sub:
			_, sawSchedule = ev.(events.ScheduleEvent)
		case <-ctx.Done():
			t.Fatalf("no schedule event published")
		}
	}

	target := core.Store.List()[0].TrainID
	res := core.Overrides.Modify(ctx, override.Request{Action: override.ForceIBL, TrainID: target})
	require.Equal(t, override.Applied, res.Outcome, res.Message)
	logged, err := core.ModLog.Query(ctx, modlog.Query{RunID: core.Store.RunID()})
	require.NoError(t, err)
	assert.Len(t, logged, 1)
}

func TestCoreRejectsBadPolicyFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Planner.PolicyFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := NewCore(cfg)
	assert.Error(t, err)
}

func TestTriggerSkipsWhileRunning(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.Addr = freeAddr(t)
	cfg.Pipeline.Cron = "0 2 * * *"
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	release := make(chan struct{})
	_, err = svc.Controller.Start(func(ctx context.Context, r *execution.Run) error {
		<-release
		return nil
	})
	require.NoError(t, err)
	first := svc.Controller.Poll().RunID

	svc.trigger()
	assert.Equal(t, first, svc.Controller.Poll().RunID)

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, svc.Controller.Wait(ctx))

	svc.trigger()
	require.NoError(t, svc.Controller.Wait(ctx))
	st := svc.Controller.Poll()
	assert.NotEqual(t, first, st.RunID)
	assert.Empty(t, st.Error)
}

func TestServiceServesAPI(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTP.Addr = freeAddr(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	url := "http://" + cfg.HTTP.Addr + "/api/health"
	var resp *http.Response
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.False(t, err != nil && !errors.Is(err, context.Canceled), "run: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("service did not stop")
	}
}
