// Package analytics derives fleet-level reports from a schedule: health
// index, predictive maintenance alerts, revenue impact, route fitness,
// energy use, passenger experience and a maintenance queue.
package analytics

import (
	"fmt"
	"strconv"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// Alert thresholds.
const (
	FailureAlertRisk = 0.25
	FailureHighRisk  = 0.35
	BogieAlertWear   = 0.35
	TempAnomalyC     = 29.0
)

// Alert types and severities.
const (
	AlertFailure     = "PREDICTIVE_FAILURE"
	AlertBogieWear   = "BOGIE_WEAR"
	AlertTempAnomaly = "TEMP_ANOMALY"

	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
)

// Alert is one predictive maintenance finding.
type Alert struct {
	TrainID  string  `json:"train_id"`
	Depot    string  `json:"depot"`
	Type     string  `json:"type"`
	Severity string  `json:"severity"`
	Value    float64 `json:"value"`
	Message  string  `json:"message"`
}

// Alerts scans recs for elevated failure risk, bogie wear and cabin
// temperature not explained by an HVAC alert.
func Alerts(recs []model.TrainRecord) []Alert {
	out := []Alert{}
	for _, r := range recs {
		if r.PredictedFailureRisk > FailureAlertRisk {
			sev := SeverityMedium
			if r.PredictedFailureRisk > FailureHighRisk {
				sev = SeverityHigh
			}
			out = append(out, newAlert(r, AlertFailure, sev, r.PredictedFailureRisk))
		}
		if r.BogieWearIndex > BogieAlertWear {
			out = append(out, newAlert(r, AlertBogieWear, SeverityMedium, r.BogieWearIndex))
		}
		if r.IoTTempAvgC > TempAnomalyC && !r.HVACAlert {
			out = append(out, newAlert(r, AlertTempAnomaly, SeverityLow, r.IoTTempAvgC))
		}
	}
	return out
}

func newAlert(r model.TrainRecord, typ, sev string, v float64) Alert {
	return Alert{
		TrainID:  r.TrainID,
		Depot:    r.Depot,
		Type:     typ,
		Severity: sev,
		Value:    v,
		Message: fmt.Sprintf("Train %s (%s): %s - %s severity (Value: %s)",
			r.TrainID, r.Depot, typ, sev, strconv.FormatFloat(v, 'f', -1, 64)),
	}
}
