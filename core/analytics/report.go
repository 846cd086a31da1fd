package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
	"github.com/d1vyadharsh1n1/MetroX/core/scheduler"
)

const (
	revenuePerKM      = 25
	dailyKMPerTrain   = 150
	maintCostPerHour  = 5000
	brandingCostPerHr = 2000
	hoursPerOpenJob   = 4

	// RevenuePerTrainDay is the fare revenue of one train in service for a day.
	RevenuePerTrainDay = revenuePerKM * dailyKMPerTrain
)

// Report aggregates every fleet analysis.
type Report struct {
	HealthIndex          float64             `json:"fleet_health_index"`
	Alerts               []Alert             `json:"predictive_maintenance_alerts"`
	ResourceOptimization []string            `json:"resource_optimization"`
	Revenue              Revenue             `json:"revenue_impact"`
	Routes               []RouteAssignment   `json:"dynamic_route_assignment"`
	Energy               []Energy            `json:"energy_efficiency"`
	Passenger            []PassengerImpact   `json:"passenger_experience"`
	Maintenance          []MaintenanceWindow `json:"intelligent_maintenance_schedule"`
	Allocation           Allocation          `json:"fleet_allocation_justification"`
}

type Revenue struct {
	OutOfService          int `json:"out_of_service"`
	PotentialLoss         int `json:"potential_loss"`
	MaintCostToday        int `json:"maint_cost_today"`
	BrandingShortfallCost int `json:"branding_shortfall_cost"`
}

type RouteAssignment struct {
	TrainID     string  `json:"train_id"`
	Route       string  `json:"assigned_route"`
	Reliability float64 `json:"reliability"`
}

type Energy struct {
	TrainID   string  `json:"train_id"`
	KWhPer100 float64 `json:"kwh_per_100km"`
	Rating    string  `json:"rating"`
	MainIssue string  `json:"main_issue"`
}

type PassengerImpact struct {
	TrainID string   `json:"train_id"`
	Score   int      `json:"score"`
	Rating  string   `json:"rating"`
	Factors []string `json:"factors"`
}

type MaintenanceWindow struct {
	TrainID  string   `json:"train_id"`
	Priority float64  `json:"priority"`
	Urgency  string   `json:"urgency"`
	Types    []string `json:"types"`
	Window   string   `json:"window"`
	EstHours int      `json:"est_hours"`
}

type Allocation struct {
	scheduler.Allocation
	ExpectedRevenue int `json:"expected_revenue"`
}

// Analyzer computes reports using the planner's allocation policy.
type Analyzer struct {
	sched *scheduler.Scheduler
}

func New(s *scheduler.Scheduler) *Analyzer { return &Analyzer{sched: s} }

// Report runs every analysis over recs.
func (a *Analyzer) Report(recs []model.TrainRecord) Report {
	alloc := a.sched.Allocate(len(recs))
	return Report{
		HealthIndex:          HealthIndex(recs),
		Alerts:               Alerts(recs),
		ResourceOptimization: ResourceOptimization(recs),
		Revenue:              RevenueImpact(recs),
		Routes:               Routes(recs),
		Energy:               EnergyEfficiency(recs),
		Passenger:            PassengerExperience(recs),
		Maintenance:          MaintenanceQueue(recs),
		Allocation:           Allocation{Allocation: alloc, ExpectedRevenue: alloc.MinService * RevenuePerTrainDay},
	}
}

// HealthIndex blends maintenance, availability, efficiency, safety and depot
// balance into a 0-100 score.
func HealthIndex(recs []model.TrainRecord) float64 {
	if len(recs) == 0 {
		return 0
	}
	var overdue, critical, ready, hvac, hot int
	risks := make([]float64, len(recs))
	wear := make([]float64, len(recs))
	depots := map[string]float64{}
	for i, r := range recs {
		for _, d := range []int{r.RSDaysFromPlan, r.SigDaysFromPlan, r.TelDaysFromPlan} {
			if d < 0 {
				overdue++
			}
		}
		critical += r.JobCriticalCount
		if r.FinalStatus == model.StatusService || r.FinalStatus == model.StatusStandby {
			ready++
		}
		if r.HVACAlert {
			hvac++
		}
		if r.IoTTempAvgC > 30 {
			hot++
		}
		risks[i] = r.PredictedFailureRisk
		wear[i] = r.BogieWearIndex
		depots[r.Depot]++
	}
	maintenance := math.Max(0, 100-float64(overdue)*15-float64(critical)*10)
	availability := float64(ready) / float64(len(recs)) * 100
	efficiency := math.Max(0, 100-stat.Mean(risks, nil)*200-stat.Mean(wear, nil)*100)
	safety := math.Max(0, 100-float64(hvac)*10-float64(hot)*5)

	counts := make([]float64, 0, len(depots))
	for _, n := range depots {
		counts = append(counts, n)
	}
	spread := 0.0
	if len(counts) > 1 {
		spread = stat.StdDev(counts, nil)
	}
	utilization := math.Max(0, 100-spread*10)

	score := maintenance*0.3 + availability*0.25 + efficiency*0.2 + safety*0.15 + utilization*0.1
	return round(score, 2)
}

// ResourceOptimization flags depot workload imbalance and thin cleaning
// coverage.
func ResourceOptimization(recs []model.TrainRecord) []string {
	out := []string{}
	if len(recs) == 0 {
		return out
	}
	type load struct{ jobs, trains float64 }
	depots := map[string]*load{}
	noClean := 0
	for _, r := range recs {
		l := depots[r.Depot]
		if l == nil {
			l = &load{}
			depots[r.Depot] = l
		}
		l.jobs += float64(r.JobOpenCount + 2*r.JobCriticalCount)
		l.trains++
		if r.CleaningSlot == "No-Clean" {
			noClean++
		}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, l := range depots {
		w := l.jobs / l.trains
		lo = math.Min(lo, w)
		hi = math.Max(hi, w)
	}
	if hi > lo*1.5 {
		out = append(out, "Workload imbalance detected between depots.")
	}
	if float64(noClean) > float64(len(recs))*0.4 {
		out = append(out, "Cleaning slot schedule sub-optimal (many No-Cleans).")
	}
	return out
}

// RevenueImpact estimates the cost of trains held out of service.
func RevenueImpact(recs []model.TrainRecord) Revenue {
	var out, jobs int
	var req, alloc float64
	for _, r := range recs {
		if r.FinalStatus == model.StatusIBL {
			out++
		}
		jobs += r.JobOpenCount
		req += r.BrandingReqHours
		alloc += r.BrandingAllocHours
	}
	return Revenue{
		OutOfService:          out,
		PotentialLoss:         out * RevenuePerTrainDay,
		MaintCostToday:        jobs * hoursPerOpenJob * maintCostPerHour,
		BrandingShortfallCost: int(math.Max(0, req-alloc) * brandingCostPerHr),
	}
}

type routeProfile struct {
	name                         string
	demand, reliability, mileage float64
}

var routeProfiles = []routeProfile{
	{"Peak_Express", 1.8, 0.9, 1.2},
	{"Off_Peak_Local", 0.7, 0.7, 0.8},
	{"Airport_Connector", 1.5, 0.95, 1.1},
	{"Tourist_Circuit", 1.0, 0.85, 0.9},
}

// Routes matches service trains to the most demanding route their
// reliability supports.
func Routes(recs []model.TrainRecord) []RouteAssignment {
	out := []RouteAssignment{}
	for _, r := range recs {
		if r.FinalStatus != model.StatusService {
			continue
		}
		rel := 1 - r.PredictedFailureRisk - r.BogieWearIndex*0.3
		best, bestScore := "Maintenance_Priority", 0.0
		for _, p := range routeProfiles {
			if rel < p.reliability {
				continue
			}
			if s := rel * p.demand * (2 - p.mileage); s > bestScore {
				best, bestScore = p.name, s
			}
		}
		out = append(out, RouteAssignment{TrainID: r.TrainID, Route: best, Reliability: round(rel, 3)})
	}
	return out
}

// EnergyEfficiency estimates traction energy per 100 km.
func EnergyEfficiency(recs []model.TrainRecord) []Energy {
	out := make([]Energy, 0, len(recs))
	for _, r := range recs {
		wear := r.BogieWearIndex * 20
		hvac := 0.0
		if r.HVACAlert {
			hvac = 15
		}
		temp := math.Max(0, (r.IoTTempAvgC-25)*0.8)
		shunt := float64(r.EstimatedShuntingMins) * 0.2
		total := 100 + wear + hvac + temp + shunt

		rating := "Poor"
		switch {
		case total < 110:
			rating = "Excellent"
		case total < 125:
			rating = "Good"
		}
		issue := "Ops"
		switch {
		case wear > 7:
			issue = "Bogie Wear"
		case hvac > 10:
			issue = "HVAC"
		case temp > 5:
			issue = "Temp"
		}
		out = append(out, Energy{TrainID: r.TrainID, KWhPer100: round(total, 1), Rating: rating, MainIssue: issue})
	}
	return out
}

// PassengerExperience scores comfort and reliability as seen from the
// platform. At most two factors are reported per train.
func PassengerExperience(recs []model.TrainRecord) []PassengerImpact {
	out := make([]PassengerImpact, 0, len(recs))
	for _, r := range recs {
		score := 100
		var factors []string
		add := func(cond bool, penalty int, factor string) {
			if cond {
				score -= penalty
				factors = append(factors, factor)
			}
		}
		add(r.HVACAlert, 25, "HVAC malfunction")
		add(r.IoTTempAvgC > 28, 10, "High cabin temperature")
		add(r.CleaningSlot == "No-Clean", 15, "No cleaning scheduled")
		add(r.PredictedFailureRisk > 0.3, 20, "High service interruption risk")
		add(r.BogieWearIndex > 0.35, 10, "Noise/Vibration risk")
		add(r.EstimatedShuntingMins > 30, 8, "Extended shunting delays")

		rating := "Poor"
		switch {
		case score >= 90:
			rating = "Excellent"
		case score >= 75:
			rating = "Good"
		case score >= 60:
			rating = "Fair"
		}
		if len(factors) == 0 {
			factors = []string{"None"}
		} else if len(factors) > 2 {
			factors = factors[:2]
		}
		out = append(out, PassengerImpact{TrainID: r.TrainID, Score: max(0, score), Rating: rating, Factors: factors})
	}
	return out
}

// MaintenanceQueue ranks trains needing work, highest priority first.
func MaintenanceQueue(recs []model.TrainRecord) []MaintenanceWindow {
	out := []MaintenanceWindow{}
	for _, r := range recs {
		var prio float64
		var types []string
		urgency := "LOW"
		escalate := func(to string) {
			if urgency == "IMMEDIATE" {
				return
			}
			if to == "MEDIUM" && urgency != "LOW" {
				return
			}
			urgency = to
		}
		if r.JobCriticalCount > 0 {
			prio += 100
			types = append(types, "Critical")
			urgency = "IMMEDIATE"
		}
		certs := []struct {
			days   int
			weight float64
			name   string
		}{
			{r.RSDaysFromPlan, 80, "RS Cert"},
			{r.SigDaysFromPlan, 75, "SIG Check"},
			{r.TelDaysFromPlan, 70, "TEL Maint"},
		}
		for _, c := range certs {
			if c.days <= 5 {
				prio += c.weight
				types = append(types, c.name)
				escalate("HIGH")
			}
		}
		if r.PredictedFailureRisk > FailureAlertRisk {
			prio += r.PredictedFailureRisk * 100
			types = append(types, "Predictive")
			escalate("MEDIUM")
		}
		if r.BogieWearIndex > BogieAlertWear {
			prio += r.BogieWearIndex * 50
			types = append(types, "Bogie")
			escalate("MEDIUM")
		}
		if prio == 0 {
			continue
		}
		window := "Next scheduled window"
		switch urgency {
		case "IMMEDIATE":
			window = "Within 24 hours"
		case "HIGH":
			window = "Within 72 hours"
		}
		out = append(out, MaintenanceWindow{
			TrainID:  r.TrainID,
			Priority: round(prio, 1),
			Urgency:  urgency,
			Types:    types,
			Window:   window,
			EstHours: len(types)*4 + r.JobOpenCount*2,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
