package prediction

import (
	"fmt"
	"time"

	"github.com/d1vyadharsh1n1/MetroX/auth"
)

const (
	KindHeuristic = "heuristic"
	KindRemote    = "remote"
)

// Config selects and parameterises the oracle.
type Config struct {
	Kind           string    `json:"kind"`
	Seed           int64     `json:"seed"`
	URL            string    `json:"url"`
	TimeoutSeconds int       `json:"timeout_seconds"`
	Auth           auth.Conf `json:"auth"`
}

// NewOracle builds the oracle named by cfg.Kind. An empty kind selects the
// heuristic oracle.
func NewOracle(cfg Config) (Oracle, error) {
	switch cfg.Kind {
	case "", KindHeuristic:
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return NewHeuristicOracle(seed), nil
	case KindRemote:
		if cfg.URL == "" {
			return nil, fmt.Errorf("remote oracle requires url")
		}
		var cred *auth.ClientCred
		if cfg.Auth.Enabled() {
			cred = auth.NewClientCred(cfg.Auth)
		}
		return NewRemoteOracle(cfg.URL, cred, time.Duration(cfg.TimeoutSeconds)*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown oracle kind: %s", cfg.Kind)
	}
}
