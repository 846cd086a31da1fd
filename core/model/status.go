package model

import (
	"fmt"
	"strings"
)

// Status is the operational decision for a train on the next service day.
type Status string

const (
	StatusService Status = "Service"
	StatusStandby Status = "Standby"
	// StatusIBL marks a train held in the Inspection Bay Line.
	StatusIBL Status = "IBL"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusService, StatusStandby, StatusIBL}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusService, StatusStandby, StatusIBL:
		return true
	}
	return false
}

// Order returns the sort position used for schedule ranking.
func (s Status) Order() int {
	switch s {
	case StatusService:
		return 0
	case StatusStandby:
		return 1
	case StatusIBL:
		return 2
	default:
		return 3
	}
}

func (s Status) String() string { return string(s) }

// ParseStatus converts a case-insensitive name into a Status.
func ParseStatus(v string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "service":
		return StatusService, nil
	case "standby":
		return StatusStandby, nil
	case "ibl":
		return StatusIBL, nil
	}
	return "", fmt.Errorf("unknown status %q", v)
}

// UnmarshalText accepts any casing of a known status.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// MarshalText writes the canonical status name.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %q", string(s))
	}
	return []byte(s), nil
}
