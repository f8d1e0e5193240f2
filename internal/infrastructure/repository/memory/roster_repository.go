package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/musileague/backend/internal/domain/roster"
)

type rosterKey struct {
	userID   string
	seasonID string
	week     int
}

type RosterRepository struct {
	mu    sync.RWMutex
	items map[rosterKey]roster.Roster
}

func NewRosterRepository() *RosterRepository {
	return &RosterRepository{items: map[rosterKey]roster.Roster{}}
}

func (r *RosterRepository) GetLatest(_ context.Context, userID, seasonID string) (roster.Roster, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest roster.Roster
	found := false
	for key, item := range r.items {
		if key.userID != userID || key.seasonID != seasonID {
			continue
		}
		if !found || item.WeekNumber > latest.WeekNumber {
			latest = item
			found = true
		}
	}
	return latest, found, nil
}

func (r *RosterRepository) GetForWeek(_ context.Context, userID, seasonID string, weekNumber int) (roster.Roster, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best roster.Roster
	found := false
	for key, item := range r.items {
		if key.userID != userID || key.seasonID != seasonID || item.WeekNumber > weekNumber {
			continue
		}
		if !found || item.WeekNumber > best.WeekNumber {
			best = item
			found = true
		}
	}
	return best, found, nil
}

func (r *RosterRepository) Insert(_ context.Context, item roster.Roster) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := rosterKey{userID: item.UserID, seasonID: item.SeasonID, week: item.WeekNumber}
	if _, exists := r.items[key]; exists {
		return fmt.Errorf("%w: user=%s season=%s week=%d",
			roster.ErrDuplicateWeek, item.UserID, item.SeasonID, item.WeekNumber)
	}
	r.items[key] = item
	return nil
}

func (r *RosterRepository) Replace(_ context.Context, item roster.Roster) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[rosterKey{userID: item.UserID, seasonID: item.SeasonID, week: item.WeekNumber}] = item
	return nil
}

func (r *RosterRepository) ListRosteredArtistIDs(_ context.Context, seasonID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	out := make([]string, 0)
	for key, item := range r.items {
		if key.seasonID != seasonID {
			continue
		}
		for _, slot := range item.Slots {
			if slot.IsEmpty() {
				continue
			}
			if _, ok := seen[slot.ArtistID]; ok {
				continue
			}
			seen[slot.ArtistID] = struct{}{}
			out = append(out, slot.ArtistID)
		}
	}
	return out, nil
}
