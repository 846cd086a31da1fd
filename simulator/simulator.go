package simulator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

const (
	DefaultTrains = 25
	dateLayout    = "2006-01-02"

	// certificate counters never drop below this floor
	certFloor = -5
)

var (
	defaultDepots = []string{"Pettah Depot", "Tripunithura Depot"}
	cleaningSlots = []string{"Night-A", "Night-B", "No-Clean"}

	// probability of 0, 1 or 2 critical job cards
	criticalJobWeights = []float64{0.98, 0.015, 0.005}
)

// Config holds parameters for the simulator.
type Config struct {
	Trains   int      `json:"trains"`
	Depots   []string `json:"depots"`
	HVACProb float64  `json:"hvac_alert_prob"`
	Seed     uint64   `json:"seed"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Trains <= 0 {
		c.Trains = DefaultTrains
	}
	if len(c.Depots) == 0 {
		c.Depots = defaultDepots
	}
	if c.HVACProb == 0 {
		c.HVACProb = 0.15
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.HVACProb < 0 || c.HVACProb > 1 {
		return fmt.Errorf("hvac_alert_prob must be within [0,1]")
	}
	return nil
}

// Simulator generates daily records. It is safe for concurrent use.
type Simulator struct {
	cfg Config

	mu       sync.Mutex
	rng      *rand.Rand
	critical distuv.Categorical
	hvac     distuv.Bernoulli
}

// New returns a simulator. A zero seed draws one from the clock.
func New(cfg Config) (*Simulator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Simulator{
		cfg:      cfg,
		rng:      rand.New(src),
		critical: distuv.NewCategorical(criticalJobWeights, src),
		hvac:     distuv.Bernoulli{P: cfg.HVACProb, Src: src},
	}, nil
}

// TrainIDs returns the fleet identifiers KM-T101 onwards.
func TrainIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("KM-T%d", 101+i)
	}
	return ids
}

// Day generates one record per train for date. Trains present in prev
// continue from their previous state: mileage grows by 100-499 km, wear
// grows by up to 0.01, and each certificate counter loses a day.
func (s *Simulator) Day(date time.Time, prev []model.DailyRecord) []model.DailyRecord {
	byID := make(map[string]model.DailyRecord, len(prev))
	for _, r := range prev {
		byID[r.TrainID] = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.DailyRecord, 0, s.cfg.Trains)
	for _, id := range TrainIDs(s.cfg.Trains) {
		rec := model.DailyRecord{
			DayID:   fmt.Sprintf("%s-%s", date.Format("02-01"), id),
			Date:    date.Format(dateLayout),
			TrainID: id,
		}
		if p, ok := byID[id]; ok {
			rec.MileageKM = p.MileageKM + float64(s.between(100, 500))
			rec.BogieWearIndex = math.Min(p.BogieWearIndex+s.uniform(0.001, 0.01), 1)
			rec.RSDaysFromPlan = max(p.RSDaysFromPlan-1, certFloor)
			rec.SigDaysFromPlan = max(p.SigDaysFromPlan-1, certFloor)
			rec.TelDaysFromPlan = max(p.TelDaysFromPlan-1, certFloor)
			rec.LastMaintenanceDate = p.LastMaintenanceDate
		} else {
			rec.MileageKM = float64(s.between(1500, 10000))
			rec.BogieWearIndex = s.uniform(0.1, 0.8)
			rec.RSDaysFromPlan = s.between(1, 90)
			rec.SigDaysFromPlan = s.between(1, 90)
			rec.TelDaysFromPlan = s.between(1, 90)
			rec.LastMaintenanceDate = date.AddDate(0, 0, -s.between(1, 90)).Format(dateLayout)
		}
		rec.BogieWearIndex = round(rec.BogieWearIndex, 4)
		rec.PrevNightShuntingCount = s.between(0, 4)
		rec.Depot = s.cfg.Depots[s.rng.IntN(len(s.cfg.Depots))]
		rec.JobOpenCount = s.between(0, 10)
		rec.JobCriticalCount = int(s.critical.Rand())
		rec.BrandingReqHours = round(s.uniform(5, 18), 2)
		rec.BrandingAllocHours = round(s.uniform(0, 20), 2)
		rec.CleaningSlot = cleaningSlots[s.rng.IntN(len(cleaningSlots))]
		rec.StablingPosition = fmt.Sprintf("Bay-%d", s.between(1, 16))
		rec.EstimatedShuntingMins = s.between(15, 45)
		rec.IoTTempAvgC = round(s.uniform(25, 28.5), 2)
		rec.HVACAlert = s.hvac.Rand() == 1
		out = append(out, rec)
	}
	return out
}

// between returns an integer in [lo, hi).
func (s *Simulator) between(lo, hi int) int { return lo + s.rng.IntN(hi-lo) }

func (s *Simulator) uniform(lo, hi float64) float64 { return lo + s.rng.Float64()*(hi-lo) }

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
