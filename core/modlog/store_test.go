package modlog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

func sample(run, train string, n int) Record {
	return Record{
		Timestamp: time.Unix(int64(1700000000+n), 0).UTC(),
		RunID:     run,
		Action:    "force_service",
		TrainID:   train,
		From:      model.StatusStandby,
		To:        model.StatusService,
		Message:   "🚆 " + train + ": Standby → Service (Manual override)",
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	in := []Record{sample("r1", "KM-T101", 1), sample("r1", "KM-T102", 2), sample("r2", "KM-T101", 3)}
	for _, r := range in {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	all, err := s.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records got %d", len(all))
	}
	for i := range in {
		if all[i].TrainID != in[i].TrainID || all[i].RunID != in[i].RunID {
			t.Fatalf("record %d out of order: %+v", i, all[i])
		}
	}
	byRun, err := s.Query(ctx, Query{RunID: "r1"})
	if err != nil {
		t.Fatalf("query run: %v", err)
	}
	if len(byRun) != 2 {
		t.Fatalf("expected 2 records for r1 got %d", len(byRun))
	}
	byTrain, err := s.Query(ctx, Query{TrainID: "KM-T101"})
	if err != nil {
		t.Fatalf("query train: %v", err)
	}
	if len(byTrain) != 2 {
		t.Fatalf("expected 2 records for KM-T101 got %d", len(byTrain))
	}
	if msgs := Messages(byTrain); msgs[0] != in[0].Message {
		t.Fatalf("unexpected message %q", msgs[0])
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestJSONLStore(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "log", "mod.jsonl"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestRotatingJSONLStore(t *testing.T) {
	s, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "mod.jsonl"), 1)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestJSONLStoreReportsCorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.jsonl")
	s, err := NewJSONLStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()
	if err := s.Append(ctx, Record{TrainID: "KM-T101", Message: "ok"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("\n{not json\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = f.Close()

	_, err = s.Query(ctx, Query{})
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt got %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected line number in %q", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore("file:modlog_test.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestOpenValidates(t *testing.T) {
	if _, err := Open(Config{Backend: "redis"}); err == nil {
		t.Fatalf("expected error without redis_url")
	}
	if _, err := Open(Config{Backend: "tape"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	for _, cfg := range []Config{
		{Backend: "jsonl", MaxSizeMB: 1, MaxBackups: 3},
		{Backend: "jsonl", MaxSizeMB: 1, MaxAgeDays: 30},
		{Backend: "jsonl", MaxSizeMB: -1},
	} {
		if _, err := Open(cfg); err == nil {
			t.Fatalf("expected retention error for %+v", cfg)
		}
	}
	s, err := Open(Config{})
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("expected memory store by default, got %T", s)
	}
}

func TestQueryTimeWindow(t *testing.T) {
	r := sample("r1", "A", 10)
	q := Query{Start: r.Timestamp.Add(time.Second)}
	if q.Match(r) {
		t.Fatalf("record before start should not match")
	}
	q = Query{End: r.Timestamp}
	if !q.Match(r) {
		t.Fatalf("record at end should match")
	}
}
