package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/d1vyadharsh1n1/MetroX/auth"
	"github.com/d1vyadharsh1n1/MetroX/core/model"
)

// RemoteOracle posts the daily feed to a scoring service:
//
//	POST <url> {"records":[...]} -> {"predictions":[...]}
//
// When Auth is set every request carries a client-credentials bearer token.
// A 401 triggers a single retry with a fresh token.
type RemoteOracle struct {
	URL    string
	Auth   *auth.ClientCred
	Client *http.Client
}

type remoteRequest struct {
	Records []model.DailyRecord `json:"records"`
}

type remoteResponse struct {
	Predictions []model.Prediction `json:"predictions"`
}

// NewRemoteOracle returns an oracle with a bounded HTTP client.
func NewRemoteOracle(url string, cred *auth.ClientCred, timeout time.Duration) *RemoteOracle {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteOracle{URL: url, Auth: cred, Client: &http.Client{Timeout: timeout}}
}

func (o *RemoteOracle) Predict(ctx context.Context, recs []model.DailyRecord) ([]model.Prediction, error) {
	body, err := json.Marshal(remoteRequest{Records: recs})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	resp, err := o.do(ctx, body, false)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && o.Auth != nil {
		_ = resp.Body.Close()
		if resp, err = o.do(ctx, body, true); err != nil {
			return nil, err
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, b)
	}
	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Predictions) != len(recs) {
		return nil, fmt.Errorf("expected %d predictions, got %d", len(recs), len(out.Predictions))
	}
	return out.Predictions, nil
}

func (o *RemoteOracle) do(ctx context.Context, body []byte, refresh bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.Auth != nil {
		if refresh {
			if _, err := o.Auth.ForceRefresh(ctx); err != nil {
				return nil, err
			}
		}
		if err := o.Auth.SetAuthHeader(ctx, req); err != nil {
			return nil, fmt.Errorf("failed to set auth header: %w", err)
		}
	}
	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}
