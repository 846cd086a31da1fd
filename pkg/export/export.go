// Package export renders schedules for people and spreadsheets.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

var csvHeader = []string{
	"ranking", "train_id", "depot", "final_status", "predicted_status",
	"predicted_failure_risk", "predicted_next_day_mileage", "manual_override_flag",
}

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, recs []model.TrainRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

// WriteCSV writes the schedule to w in CSV format with a header row.
func WriteCSV(w io.Writer, recs []model.TrainRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			strconv.Itoa(r.Ranking),
			r.TrainID,
			r.Depot,
			r.FinalStatus.String(),
			r.PredictedStatus.String(),
			strconv.FormatFloat(r.PredictedFailureRisk, 'f', -1, 64),
			strconv.FormatFloat(r.PredictedNextDayMileage, 'f', -1, 64),
			strconv.FormatBool(r.ManualOverrideFlag),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Table formats the schedule as fixed-width text lines, header first.
// Overridden trains are marked with an asterisk.
func Table(recs []model.TrainRecord) []string {
	out := []string{fmt.Sprintf("%-4s %-8s %-20s %-8s %-9s %6s", "#", "TRAIN", "DEPOT", "STATUS", "PREDICTED", "RISK")}
	for _, r := range recs {
		mark := ""
		if r.ManualOverrideFlag {
			mark = "*"
		}
		out = append(out, fmt.Sprintf("%-4d %-8s %-20s %-8s %-9s %5.1f%%%s",
			r.Ranking, r.TrainID, r.Depot, r.FinalStatus, r.PredictedStatus, r.PredictedFailureRisk*100, mark))
	}
	return out
}
