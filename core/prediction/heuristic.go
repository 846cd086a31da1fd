package prediction

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// HeuristicOracle scores trains with fixed weights over wear, open jobs,
// certificate validity, mileage and cabin climate.
type HeuristicOracle struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeuristicOracle returns an oracle whose mileage noise is drawn from seed.
func NewHeuristicOracle(seed int64) *HeuristicOracle {
	return &HeuristicOracle{rng: rand.New(rand.NewSource(seed))}
}

func (o *HeuristicOracle) Predict(ctx context.Context, recs []model.DailyRecord) ([]model.Prediction, error) {
	out := make([]model.Prediction, len(recs))
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, r := range recs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		risk := FailureRisk(r)
		out[i] = model.Prediction{
			TrainID:        r.TrainID,
			FailureRisk:    risk,
			Status:         Status(r, risk),
			NextDayMileage: o.mileage(r),
		}
	}
	return out, nil
}

// FailureRisk returns the failure probability in [0,1], rounded to four
// decimals.
func FailureRisk(r model.DailyRecord) float64 {
	risk := r.BogieWearIndex*0.3 + float64(r.JobCriticalCount)*0.2
	for _, d := range []int{r.RSDaysFromPlan, r.SigDaysFromPlan, r.TelDaysFromPlan} {
		if d <= 0 {
			risk += 0.3
		}
	}
	risk += math.Min(r.MileageKM/10000, 1) * 0.2
	if r.IoTTempAvgC > 28 {
		risk += (r.IoTTempAvgC - 28) / 10 * 0.1
	}
	if r.HVACAlert {
		risk += 0.1
	}
	return round(math.Min(risk, 1), 4)
}

// Status recommends a status. Critical jobs and expired certificates force
// IBL; otherwise a weighted score of reliability, comfort and bogie
// condition decides.
func Status(r model.DailyRecord, risk float64) model.Status {
	if r.HardBlocked() {
		return model.StatusIBL
	}
	score := (1-risk)*0.4 + r.PassengerScore()/100*0.3 + (1-r.BogieWearIndex)*0.3
	switch {
	case score >= 0.7:
		return model.StatusService
	case score >= 0.4:
		return model.StatusStandby
	default:
		return model.StatusIBL
	}
}

func (o *HeuristicOracle) mileage(r model.DailyRecord) float64 {
	base := float64(200 + o.rng.Intn(400))
	factor := math.Min(r.MileageKM/5000, 1.5)
	depot := 1.0
	if r.Depot == "Pettah Depot" {
		depot = 1.2
	}
	return round(base*factor*depot, 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
