package prediction

import (
	"context"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// Oracle scores daily records. Implementations must return one prediction
// per input record, in input order.
type Oracle interface {
	Predict(ctx context.Context, recs []model.DailyRecord) ([]model.Prediction, error)
}

// Merge combines raw records with their predictions into schedule rows with
// FinalStatus initialised to the predicted status.
func Merge(recs []model.DailyRecord, preds []model.Prediction) []model.TrainRecord {
	byID := make(map[string]model.Prediction, len(preds))
	for _, p := range preds {
		byID[p.TrainID] = p
	}
	out := make([]model.TrainRecord, 0, len(recs))
	for _, r := range recs {
		p := byID[r.TrainID]
		out = append(out, model.TrainRecord{
			DailyRecord:             r,
			PredictedFailureRisk:    p.FailureRisk,
			PredictedStatus:         p.Status,
			PredictedNextDayMileage: p.NextDayMileage,
			FinalStatus:             p.Status,
		})
	}
	return out
}
