package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// MemoryStore stores feeds in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.RWMutex
	days map[string][]model.DailyRecord
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{days: map[string][]model.DailyRecord{}}
}

func (s *MemoryStore) SaveDay(_ context.Context, date string, recs []model.DailyRecord) error {
	cp := append([]model.DailyRecord(nil), recs...)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].TrainID < cp[j].TrainID })
	s.mu.Lock()
	s.days[date] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Day(_ context.Context, date string) ([]model.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.DailyRecord(nil), s.days[date]...), nil
}

func (s *MemoryStore) Latest(ctx context.Context) (string, []model.DailyRecord, error) {
	s.mu.RLock()
	latest := ""
	for d := range s.days {
		if d > latest {
			latest = d
		}
	}
	s.mu.RUnlock()
	if latest == "" {
		return "", nil, ErrEmpty
	}
	recs, err := s.Day(ctx, latest)
	return latest, recs, err
}

func (s *MemoryStore) Query(_ context.Context, trainID string, start, end time.Time) ([]model.DailyRecord, error) {
	from, to := Day(start), Day(end)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.DailyRecord
	for d, recs := range s.days {
		if d < from || d > to {
			continue
		}
		for _, r := range recs {
			if trainID == "" || r.TrainID == trainID {
				res = append(res, r)
			}
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Date != res[j].Date {
			return res[i].Date < res[j].Date
		}
		return res[i].TrainID < res[j].TrainID
	})
	return res, nil
}

func (s *MemoryStore) Close() error { return nil }
