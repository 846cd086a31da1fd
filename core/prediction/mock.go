package prediction

import (
	"context"

	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// MockOracle returns configured predictions. Trains without an entry get
// zero risk and the Default status, or Service when Default is empty.
type MockOracle struct {
	Predictions map[string]model.Prediction
	Default     model.Status
	Err         error
}

func (m MockOracle) Predict(_ context.Context, recs []model.DailyRecord) ([]model.Prediction, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	def := m.Default
	if def == "" {
		def = model.StatusService
	}
	out := make([]model.Prediction, len(recs))
	for i, r := range recs {
		p, ok := m.Predictions[r.TrainID]
		if !ok {
			p = model.Prediction{Status: def}
		}
		p.TrainID = r.TrainID
		out[i] = p
	}
	return out, nil
}
