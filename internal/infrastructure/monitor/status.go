package monitor

import "time"

// Status is the last observed state of every registered dependency.
type Status struct {
	Services  map[string]bool `json:"services"`
	Sessions  int             `json:"sessions,omitempty"`
	LastCheck time.Time       `json:"last_check"`
}

// Healthy reports whether every dependency answered.
func (s Status) Healthy() bool {
	if len(s.Services) == 0 {
		return false
	}
	for _, ok := range s.Services {
		if !ok {
			return false
		}
	}
	return true
}
