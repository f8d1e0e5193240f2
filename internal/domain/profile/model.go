package profile

import (
	"fmt"
	"time"
)

// Profile carries a user's in-game economy: the spendable coin
// balance and the season-scoped running score. Both are mutated only
// by cost debits, bootstrap credits and the external weekly batch.
type Profile struct {
	UserID     string
	MusiCoins  int64
	TotalScore float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (p Profile) ValidateBasic() error {
	if p.UserID == "" {
		return fmt.Errorf("profile user id is required")
	}
	if p.MusiCoins < 0 {
		return fmt.Errorf("musi coins balance cannot be negative")
	}
	return nil
}
