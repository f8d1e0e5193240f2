package promo

import (
	"context"
	"time"
)

// PointsSource reads the real-time promotional points written by the
// external mini-games engine. Points are scoped to a user, an artist
// and an award timestamp; this core only sums them.
type PointsSource interface {
	GetPointsSince(ctx context.Context, userID string, artistIDs []string, since time.Time) (map[string]int, error)
}
