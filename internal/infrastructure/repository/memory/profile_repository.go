package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/musileague/backend/internal/domain/profile"
)

type ProfileRepository struct {
	mu    sync.RWMutex
	items map[string]profile.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{items: map[string]profile.Profile{}}
}

func (r *ProfileRepository) GetOrCreate(_ context.Context, userID string, startingCoins int64) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.items[userID]; ok {
		return p, nil
	}

	now := time.Now().UTC()
	p := profile.Profile{
		UserID:    userID,
		MusiCoins: startingCoins,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.items[userID] = p
	return p, nil
}

func (r *ProfileRepository) Debit(_ context.Context, userID string, amount int64) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[userID]
	if !ok {
		return profile.Profile{}, fmt.Errorf("profile not found: %s", userID)
	}
	if p.MusiCoins < amount {
		return profile.Profile{}, fmt.Errorf("%w: have %d, need %d",
			profile.ErrInsufficientFunds, p.MusiCoins, amount)
	}

	p.MusiCoins -= amount
	p.UpdatedAt = time.Now().UTC()
	r.items[userID] = p
	return p, nil
}

func (r *ProfileRepository) Credit(_ context.Context, userID string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[userID]
	if !ok {
		return fmt.Errorf("profile not found: %s", userID)
	}

	p.MusiCoins += amount
	p.UpdatedAt = time.Now().UTC()
	r.items[userID] = p
	return nil
}

func (r *ProfileRepository) AddScore(_ context.Context, userID string, delta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[userID]
	if !ok {
		return fmt.Errorf("profile not found: %s", userID)
	}

	p.TotalScore += delta
	p.UpdatedAt = time.Now().UTC()
	r.items[userID] = p
	return nil
}
