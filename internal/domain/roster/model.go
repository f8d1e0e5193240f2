package roster

import (
	"fmt"
	"time"

	"github.com/musileague/backend/internal/domain/tier"
)

// SlotCount is the fixed roster size.
const SlotCount = 5

// SlotAssignment is one positional pick: empty, or an artist with the
// tier resolved from its current popularity. Empty assignments only
// appear transiently while a submission is validated; committed
// rosters always carry five filled slots.
type SlotAssignment struct {
	ArtistID string
	Tier     tier.Tier
}

func (s SlotAssignment) IsEmpty() bool {
	return s.ArtistID == ""
}

// Roster is one committed version of a user's team. Versions are
// keyed by (user, season, week) and never deleted; a new week number
// creates a new row instead of mutating the previous one.
type Roster struct {
	UserID     string
	SeasonID   string
	WeekNumber int
	Slots      [SlotCount]SlotAssignment
	CaptainID  string
	LockedAt   time.Time
	CreatedAt  time.Time
}

func (r Roster) ValidateBasic() error {
	if r.UserID == "" {
		return fmt.Errorf("roster user id is required")
	}
	if r.SeasonID == "" {
		return fmt.Errorf("roster season id is required")
	}
	if r.WeekNumber <= 0 {
		return fmt.Errorf("roster week number must be greater than zero")
	}
	for i, slot := range r.Slots {
		if slot.IsEmpty() {
			return fmt.Errorf("roster slot %d is empty", i+1)
		}
	}
	if r.CaptainID != "" && !r.Contains(r.CaptainID) {
		return fmt.Errorf("captain %s is not part of the roster", r.CaptainID)
	}
	return nil
}

func (r Roster) Contains(artistID string) bool {
	for _, slot := range r.Slots {
		if slot.ArtistID == artistID {
			return true
		}
	}
	return false
}

func (r Roster) ArtistIDs() []string {
	out := make([]string, 0, SlotCount)
	for _, slot := range r.Slots {
		if !slot.IsEmpty() {
			out = append(out, slot.ArtistID)
		}
	}
	return out
}

// SlotKey names a slot position in field-level validation output.
func SlotKey(position int) string {
	return fmt.Sprintf("slot_%d", position+1)
}

// CaptainKey names the captain field in validation output.
const CaptainKey = "captain"
