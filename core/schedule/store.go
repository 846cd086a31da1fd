// Package schedule holds the current induction plan. It is the single
// source of truth for each train's operative status.
package schedule

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

var (
	// ErrNoData is returned when no schedule has been published yet.
	ErrNoData = errors.New("no schedule available")
	// ErrUnknownTrain is returned when the train is not part of the schedule.
	ErrUnknownTrain = errors.New("unknown train")
	// ErrStaleRun is returned by UpdateIn once a newer run has replaced the
	// schedule it targets.
	ErrStaleRun = errors.New("schedule replaced by a newer run")
)

// Change is the outcome of an Update. RunID is the schedule generation the
// update was applied to, read under the same lock as the record.
type Change struct {
	RunID  string
	Before model.TrainRecord
	After  model.TrainRecord
}

// Snapshot is a point-in-time copy of the schedule.
type Snapshot struct {
	RunID       string              `json:"run_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	Records     []model.TrainRecord `json:"schedule"`
}

// Store exposes read and mutation access to the schedule.
type Store interface {
	Replace(runID string, recs []model.TrainRecord)
	Snapshot() Snapshot
	List() []model.TrainRecord
	Get(trainID string) (model.TrainRecord, error)
	Update(trainID string, fn func(*model.TrainRecord) error) (Change, error)
	UpdateIn(runID, trainID string, fn func(*model.TrainRecord) error) (Change, error)
	Len() int
	RunID() string
}

// MemoryStore keeps the schedule in memory, ordered by ranking.
type MemoryStore struct {
	mu          sync.RWMutex
	runID       string
	generatedAt time.Time
	recs        []model.TrainRecord
	index       map[string]int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: map[string]int{}}
}

// Replace installs a freshly generated schedule atomically.
func (s *MemoryStore) Replace(runID string, recs []model.TrainRecord) {
	cp := make([]model.TrainRecord, len(recs))
	copy(cp, recs)
	s.mu.Lock()
	s.runID = runID
	s.generatedAt = time.Now()
	s.recs = cp
	s.rerankLocked()
	s.mu.Unlock()
}

// Snapshot returns the schedule and its generation metadata.
func (s *MemoryStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.TrainRecord, len(s.recs))
	copy(out, s.recs)
	return Snapshot{RunID: s.runID, GeneratedAt: s.generatedAt, Records: out}
}

// List returns the records in ranking order.
func (s *MemoryStore) List() []model.TrainRecord { return s.Snapshot().Records }

// Len returns the number of trains in the schedule.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}

// RunID identifies the run that generated the current schedule.
func (s *MemoryStore) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

// Get returns a copy of a single record.
func (s *MemoryStore) Get(trainID string) (model.TrainRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.recs) == 0 {
		return model.TrainRecord{}, ErrNoData
	}
	i, ok := s.index[trainID]
	if !ok {
		return model.TrainRecord{}, ErrUnknownTrain
	}
	return s.recs[i], nil
}

// Update applies fn to the record under the write lock. When fn returns an
// error the record is left untouched and the error is returned as is, so
// callers can decide on the record the store holds. Rankings are recomputed
// after a successful change.
func (s *MemoryStore) Update(trainID string, fn func(*model.TrainRecord) error) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(trainID, fn)
}

// UpdateIn is Update restricted to the schedule generation runID.
func (s *MemoryStore) UpdateIn(runID, trainID string, fn func(*model.TrainRecord) error) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.recs) > 0 && s.runID != runID {
		return Change{RunID: s.runID}, ErrStaleRun
	}
	return s.updateLocked(trainID, fn)
}

func (s *MemoryStore) updateLocked(trainID string, fn func(*model.TrainRecord) error) (Change, error) {
	if len(s.recs) == 0 {
		return Change{}, ErrNoData
	}
	i, ok := s.index[trainID]
	if !ok {
		return Change{RunID: s.runID}, ErrUnknownTrain
	}
	ch := Change{RunID: s.runID, Before: s.recs[i], After: s.recs[i]}
	next := ch.Before
	if err := fn(&next); err != nil {
		return ch, err
	}
	s.recs[i] = next
	s.rerankLocked()
	ch.After = s.recs[s.index[trainID]]
	return ch, nil
}

// rerankLocked orders records Service, Standby, IBL while keeping the
// previous relative order inside each status.
func (s *MemoryStore) rerankLocked() {
	sort.SliceStable(s.recs, func(i, j int) bool {
		return s.recs[i].FinalStatus.Order() < s.recs[j].FinalStatus.Order()
	})
	s.index = make(map[string]int, len(s.recs))
	for i := range s.recs {
		s.recs[i].Ranking = i + 1
		s.index[s.recs[i].TrainID] = i
	}
}
