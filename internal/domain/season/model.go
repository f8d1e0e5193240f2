package season

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusUpcoming    Status = "upcoming"
	StatusActive      Status = "active"
	StatusCalculating Status = "calculating"
	StatusCompleted   Status = "completed"
)

var AllStatuses = map[Status]struct{}{
	StatusUpcoming:    {},
	StatusActive:      {},
	StatusCalculating: {},
	StatusCompleted:   {},
}

// Season is one competition window. At most one season is active at a
// time; the orchestrator enforces that, not the store.
type Season struct {
	ID        string
	Name      string
	StartsAt  time.Time
	EndsAt    time.Time
	IsActive  bool
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Season) ValidateBasic() error {
	if s.ID == "" {
		return fmt.Errorf("season id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("season name is required")
	}
	if s.StartsAt.IsZero() {
		return fmt.Errorf("season start date is required")
	}
	if !s.EndsAt.IsZero() && !s.EndsAt.After(s.StartsAt) {
		return fmt.Errorf("season end date must be after start date")
	}
	if _, ok := AllStatuses[s.Status]; !ok {
		return fmt.Errorf("unknown season status %q", s.Status)
	}
	return nil
}
