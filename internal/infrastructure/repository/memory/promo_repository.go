package memory

import (
	"context"
	"sync"
	"time"
)

// PromoAward mirrors one row written by the external promo engine.
type PromoAward struct {
	UserID    string
	ArtistID  string
	Points    int
	AwardedAt time.Time
}

type PromoRepository struct {
	mu     sync.RWMutex
	awards []PromoAward
}

func NewPromoRepository(awards []PromoAward) *PromoRepository {
	return &PromoRepository{awards: append([]PromoAward(nil), awards...)}
}

func (r *PromoRepository) Add(award PromoAward) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.awards = append(r.awards, award)
}

func (r *PromoRepository) GetPointsSince(_ context.Context, userID string, artistIDs []string, since time.Time) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]struct{}, len(artistIDs))
	for _, id := range artistIDs {
		wanted[id] = struct{}{}
	}

	out := make(map[string]int, len(artistIDs))
	for _, award := range r.awards {
		if award.UserID != userID {
			continue
		}
		if award.AwardedAt.Before(since) {
			continue
		}
		if _, ok := wanted[award.ArtistID]; !ok {
			continue
		}
		out[award.ArtistID] += award.Points
	}
	return out, nil
}
