package scheduler

import (
	"errors"
	"math"
	"sort"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// ErrEmptyFleet is returned when there is nothing to plan.
var ErrEmptyFleet = errors.New("no trains to schedule")

// Allocation summarises the fleet split the policy asks for.
type Allocation struct {
	FleetSize      int     `json:"fleet_size"`
	MinService     int     `json:"min_service_trains"`
	MinStandby     int     `json:"min_standby_trains"`
	MinIBL         int     `json:"min_ibl_trains"`
	ServiceMinutes float64 `json:"service_minutes"`
}

// Scheduler assigns final statuses to scored trains.
type Scheduler struct {
	Policy Policy
}

// New returns a scheduler for p after applying defaults.
func New(p Policy) (*Scheduler, error) {
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{Policy: p}, nil
}

// Allocate computes the service/standby/IBL split for a fleet of n trains.
func (s *Scheduler) Allocate(n int) Allocation {
	mins, _ := s.Policy.ServiceMinutes()
	service := int(mins/s.Policy.HeadwayMinutes + 0.5)
	if service > n {
		service = n
	}
	remaining := n - service
	standby := 3
	if remaining > 0 {
		standby = max(3, remaining)
	}
	standby = min(standby, s.Policy.MaxStandby)
	return Allocation{
		FleetSize:      n,
		MinService:     service,
		MinStandby:     standby,
		MinIBL:         max(0, n-service-standby),
		ServiceMinutes: mins,
	}
}

// Plan returns a copy of recs with FinalStatus and Ranking set. Trains with
// critical jobs, expired certificates or a manual override flag are laid up.
// The remaining trains are ranked by Score; the best fill Service up to the
// allocation and MaxService, the next fill Standby up to MaxStandby, and any
// left over go to IBL. The result is ordered Service, Standby, IBL with the
// ranking order preserved inside each group.
func (s *Scheduler) Plan(recs []model.TrainRecord) ([]model.TrainRecord, error) {
	if len(recs) == 0 {
		return nil, ErrEmptyFleet
	}
	var eligible, ibl []model.TrainRecord
	for _, r := range recs {
		if r.HardBlocked() || r.ManualOverrideFlag {
			r.FinalStatus = model.StatusIBL
			ibl = append(ibl, r)
			continue
		}
		eligible = append(eligible, r)
	}

	target := min(s.Allocate(len(recs)).MinService, len(eligible), s.Policy.MaxService)

	avg := meanMileage(eligible)
	sort.SliceStable(eligible, func(i, j int) bool {
		return s.Score(eligible[i], avg) > s.Score(eligible[j], avg)
	})
	for i := range eligible {
		switch {
		case i < target:
			eligible[i].FinalStatus = model.StatusService
		case i < target+s.Policy.MaxStandby:
			eligible[i].FinalStatus = model.StatusStandby
		default:
			eligible[i].FinalStatus = model.StatusIBL
		}
	}

	out := append(eligible, ibl...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalStatus.Order() < out[j].FinalStatus.Order()
	})
	for i := range out {
		out[i].Ranking = i + 1
	}
	return out, nil
}

// Score ranks an eligible train. avgMileage is the mean predicted next-day
// mileage of the eligible set; trains expected to run less score higher.
func (s *Scheduler) Score(r model.TrainRecord, avgMileage float64) float64 {
	w := s.Policy.Weights
	mileage := 0.0
	if avgMileage > 0 {
		mileage = 1 - math.Min(r.PredictedNextDayMileage/(avgMileage*1.2), 1)
	}
	return (1-r.PredictedFailureRisk)*w.Reliability +
		r.PassengerScore()/100*w.Passenger +
		(1-r.BogieWearIndex)*w.Bogie +
		mileage*w.Mileage
}

func meanMileage(recs []model.TrainRecord) float64 {
	if len(recs) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range recs {
		sum += r.PredictedNextDayMileage
	}
	return sum / float64(len(recs))
}
