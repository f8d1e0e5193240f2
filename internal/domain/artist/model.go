package artist

import (
	"fmt"
	"time"
)

// Artist is one cached entry of the artist metadata cache. The cache
// is read-through: the engine refreshes and upserts entries but the
// authoritative figures come from the metadata provider.
type Artist struct {
	ID         string
	Name       string
	ImageURL   string
	Popularity int
	Followers  int64
	IsFeatured bool
	UpdatedAt  time.Time
}

func (a Artist) ValidateBasic() error {
	if a.ID == "" {
		return fmt.Errorf("artist id is required")
	}
	if a.Name == "" {
		return fmt.Errorf("artist name is required")
	}
	if a.Popularity < 0 {
		return fmt.Errorf("artist popularity cannot be negative")
	}
	if a.Followers < 0 {
		return fmt.Errorf("artist followers cannot be negative")
	}
	return nil
}
