package model

import "math"

// DailyRecord is the raw nightly feed for one train.
type DailyRecord struct {
	DayID                  string  `json:"dayid"`
	Date                   string  `json:"date"`
	TrainID                string  `json:"train_id"`
	Depot                  string  `json:"depot"`
	RSDaysFromPlan         int     `json:"rs_days_from_plan"`
	SigDaysFromPlan        int     `json:"sig_days_from_plan"`
	TelDaysFromPlan        int     `json:"tel_days_from_plan"`
	JobOpenCount           int     `json:"job_open_count"`
	JobCriticalCount       int     `json:"job_critical_count"`
	BrandingReqHours       float64 `json:"branding_req_hours"`
	BrandingAllocHours     float64 `json:"branding_alloc_hours"`
	MileageKM              float64 `json:"mileage_km"`
	BogieWearIndex         float64 `json:"bogie_wear_index"`
	CleaningSlot           string  `json:"cleaning_slot"`
	StablingPosition       string  `json:"stabling_position"`
	EstimatedShuntingMins  int     `json:"estimated_shunting_mins"`
	PrevNightShuntingCount int     `json:"prev_night_shunting_count"`
	IoTTempAvgC            float64 `json:"iot_temp_avg_c"`
	HVACAlert              bool    `json:"hvac_alert"`
	LastMaintenanceDate    string  `json:"last_maintenance_date"`
}

// MinCertDays returns the smallest remaining validity among the
// rolling stock, signalling and telecom certificates.
func (r DailyRecord) MinCertDays() int {
	m := r.RSDaysFromPlan
	if r.SigDaysFromPlan < m {
		m = r.SigDaysFromPlan
	}
	if r.TelDaysFromPlan < m {
		m = r.TelDaysFromPlan
	}
	return m
}

// CertificateExpired reports whether any fitness certificate is due.
func (r DailyRecord) CertificateExpired() bool { return r.MinCertDays() <= 0 }

// HardBlocked reports whether the train must not leave the inspection bay.
func (r DailyRecord) HardBlocked() bool {
	return r.JobCriticalCount > 0 || r.CertificateExpired()
}

// PassengerScore estimates comfort on a 0-100 scale from HVAC state and
// cabin temperature.
func (r DailyRecord) PassengerScore() float64 {
	score := 100.0
	if r.HVACAlert {
		score -= 25
	}
	return score - math.Max(0, r.IoTTempAvgC-28)*10
}

// BrandingShortfall returns the contracted branding hours not yet allocated.
func (r DailyRecord) BrandingShortfall() float64 {
	return math.Max(0, r.BrandingReqHours-r.BrandingAllocHours)
}

// Prediction is the oracle output for one train.
type Prediction struct {
	TrainID        string  `json:"train_id"`
	FailureRisk    float64 `json:"predicted_failure_risk"`
	Status         Status  `json:"predicted_status"`
	NextDayMileage float64 `json:"predicted_next_day_mileage"`
}

// TrainRecord is one row of the induction schedule.
type TrainRecord struct {
	DailyRecord
	PredictedFailureRisk    float64 `json:"predicted_failure_risk"`
	PredictedStatus         Status  `json:"predicted_status"`
	PredictedNextDayMileage float64 `json:"predicted_next_day_mileage"`
	FinalStatus             Status  `json:"final_status"`
	ManualOverrideFlag      bool    `json:"manual_override_flag"`
	Ranking                 int     `json:"ranking"`
}

// StatusCounts tallies records by final status.
func StatusCounts(recs []TrainRecord) map[Status]int {
	out := map[Status]int{StatusService: 0, StatusStandby: 0, StatusIBL: 0}
	for _, r := range recs {
		out[r.FinalStatus]++
	}
	return out
}
