package weekly

import (
	"fmt"
	"time"
)

// Snapshot is the popularity reference point frozen at the start of a
// week. Append-only: the first write for (week, artist) wins and is
// never overwritten by later popularity drift.
type Snapshot struct {
	WeekNumber int
	ArtistID   string
	Popularity int
	Followers  int64
	CreatedAt  time.Time
}

func (s Snapshot) ValidateBasic() error {
	if s.WeekNumber <= 0 {
		return fmt.Errorf("snapshot week number must be greater than zero")
	}
	if s.ArtistID == "" {
		return fmt.Errorf("snapshot artist id is required")
	}
	return nil
}

// Score is one artist's computed points for one week, produced by the
// external scoring batch. Its presence for a week is the signal that
// scoring has caught up with the snapshots.
type Score struct {
	WeekNumber  int
	ArtistID    string
	TotalPoints int
	CreatedAt   time.Time
}
