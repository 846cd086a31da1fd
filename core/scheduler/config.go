package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Weights of the ranking score. They should sum to 1 but are not
// normalised.
type Weights struct {
	Reliability float64 `json:"reliability" yaml:"reliability"`
	Passenger   float64 `json:"passenger" yaml:"passenger"`
	Bogie       float64 `json:"bogie" yaml:"bogie"`
	Mileage     float64 `json:"mileage" yaml:"mileage"`
}

// Policy defines planning parameters loaded from configuration.
type Policy struct {
	ServiceStart   string  `json:"service_start" yaml:"service_start"`
	ServiceEnd     string  `json:"service_end" yaml:"service_end"`
	HeadwayMinutes float64 `json:"headway_minutes" yaml:"headway_minutes"`
	MaxService     int     `json:"max_service" yaml:"max_service"`
	MaxStandby     int     `json:"max_standby" yaml:"max_standby"`
	Weights        Weights `json:"weights" yaml:"weights"`
}

// DefaultPolicy mirrors the operating day of the line: 06:00 to 22:30 at a
// 7.5 minute headway, at most 14 trains in service and 4 on standby.
func DefaultPolicy() Policy {
	return Policy{
		ServiceStart:   "06:00",
		ServiceEnd:     "22:30",
		HeadwayMinutes: 7.5,
		MaxService:     14,
		MaxStandby:     4,
		Weights:        Weights{Reliability: 0.35, Passenger: 0.25, Bogie: 0.2, Mileage: 0.2},
	}
}

// SetDefaults fills zero fields from DefaultPolicy.
func (p *Policy) SetDefaults() {
	d := DefaultPolicy()
	if p.ServiceStart == "" {
		p.ServiceStart = d.ServiceStart
	}
	if p.ServiceEnd == "" {
		p.ServiceEnd = d.ServiceEnd
	}
	if p.HeadwayMinutes == 0 {
		p.HeadwayMinutes = d.HeadwayMinutes
	}
	if p.MaxService == 0 {
		p.MaxService = d.MaxService
	}
	if p.MaxStandby == 0 {
		p.MaxStandby = d.MaxStandby
	}
	if p.Weights == (Weights{}) {
		p.Weights = d.Weights
	}
}

// Validate checks the policy for consistency.
func (p Policy) Validate() error {
	if _, err := p.ServiceMinutes(); err != nil {
		return err
	}
	if p.HeadwayMinutes <= 0 {
		return fmt.Errorf("headway_minutes must be positive")
	}
	if p.MaxService < 0 || p.MaxStandby < 0 {
		return fmt.Errorf("max_service and max_standby must not be negative")
	}
	return nil
}

// ServiceMinutes returns the length of the operating day.
func (p Policy) ServiceMinutes() (float64, error) {
	start, err := time.Parse("15:04", p.ServiceStart)
	if err != nil {
		return 0, fmt.Errorf("service_start: %w", err)
	}
	end, err := time.Parse("15:04", p.ServiceEnd)
	if err != nil {
		return 0, fmt.Errorf("service_end: %w", err)
	}
	if !end.After(start) {
		return 0, fmt.Errorf("service_end must be after service_start")
	}
	return end.Sub(start).Minutes(), nil
}

// LoadPolicy loads a Policy from a JSON or YAML file. Missing fields take
// their defaults.
func LoadPolicy(path string) (Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return Policy{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return Policy{}, fmt.Errorf("unsupported policy format: %s", path)
	}
	return DecodePolicy(f, ext)
}

// DecodePolicy reads a Policy in the given format from r.
func DecodePolicy(r io.Reader, format string) (Policy, error) {
	var p Policy
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&p); err != nil {
			return p, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&p); err != nil {
			return p, err
		}
	default:
		return p, fmt.Errorf("unsupported format: %s", format)
	}
	p.SetDefaults()
	return p, p.Validate()
}
