package memory

import (
	"context"
	"sync"

	"github.com/musileague/backend/internal/domain/artist"
)

type ArtistRepository struct {
	mu    sync.RWMutex
	items map[string]artist.Artist
}

func NewArtistRepository(artists []artist.Artist) *ArtistRepository {
	items := make(map[string]artist.Artist, len(artists))
	for _, a := range artists {
		items[a.ID] = a
	}
	return &ArtistRepository{items: items}
}

func (r *ArtistRepository) GetByID(_ context.Context, artistID string) (artist.Artist, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[artistID]
	if !ok {
		return artist.Artist{}, false, nil
	}
	return a, true, nil
}

func (r *ArtistRepository) GetByIDs(_ context.Context, artistIDs []string) ([]artist.Artist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]artist.Artist, 0, len(artistIDs))
	for _, id := range artistIDs {
		if a, ok := r.items[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *ArtistRepository) Upsert(_ context.Context, items []artist.Artist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range items {
		r.items[a.ID] = a
	}
	return nil
}

func (r *ArtistRepository) IsFeatured(_ context.Context, artistID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[artistID]
	if !ok {
		return false, nil
	}
	return a.IsFeatured, nil
}

func (r *ArtistRepository) ListIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.items))
	for id := range r.items {
		out = append(out, id)
	}
	return out, nil
}
