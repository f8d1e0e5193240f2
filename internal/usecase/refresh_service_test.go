package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/musileague/backend/internal/domain/artist"
	"github.com/musileague/backend/internal/domain/roster"
	"github.com/musileague/backend/internal/domain/tier"
	"github.com/musileague/backend/internal/infrastructure/repository/memory"
	"github.com/musileague/backend/internal/platform/logging"
)

func rosterFromInput(input SaveRosterInput, week int) roster.Roster {
	var slots [roster.SlotCount]roster.SlotAssignment
	requirements := tier.SlotRequirements()
	for i, artistID := range input.SlotArtistIDs {
		slots[i] = roster.SlotAssignment{ArtistID: artistID, Tier: requirements[i]}
	}
	return roster.Roster{
		UserID:     input.UserID,
		SeasonID:   input.SeasonID,
		WeekNumber: week,
		Slots:      slots,
		CaptainID:  input.CaptainID,
	}
}

type countingProvider struct {
	mu    sync.Mutex
	calls int
	byID  map[string]artist.Artist
	err   error
}

func (p *countingProvider) GetArtists(_ context.Context, artistIDs []string) ([]artist.Artist, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.err != nil {
		return nil, p.err
	}

	out := make([]artist.Artist, 0, len(artistIDs))
	for _, id := range artistIDs {
		if a, ok := p.byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func newRefreshFixture(t *testing.T, provider ArtistMetadataProvider) (*ArtistRefreshService, *memory.ArtistRepository, *memory.RosterRepository) {
	t.Helper()

	seasonRepo := memory.NewSeasonRepository(memory.SeedSeasons())
	artistRepo := memory.NewArtistRepository(memory.SeedArtists())
	rosterRepo := memory.NewRosterRepository()

	svc := NewArtistRefreshService(seasonRepo, rosterRepo, artistRepo, provider, logging.NewNop())
	return svc, artistRepo, rosterRepo
}

func seedRoster(t *testing.T, rosterRepo *memory.RosterRepository, userID string) {
	t.Helper()

	input := validInput(userID)
	item := rosterFromInput(input, 1)
	if err := rosterRepo.Insert(t.Context(), item); err != nil {
		t.Fatalf("seed roster: %v", err)
	}
}

func TestArtistRefreshService_Refresh_UpdatesRosteredArtists(t *testing.T) {
	provider := &countingProvider{byID: map[string]artist.Artist{
		"art_nova_skyline": {ID: "art_nova_skyline", Name: "Nova Skyline", Popularity: 95, Followers: 50_000_000, IsFeatured: true},
	}}
	svc, artistRepo, rosterRepo := newRefreshFixture(t, provider)
	seedRoster(t, rosterRepo, "user-1")

	result, err := svc.Refresh(t.Context(), RefreshInput{})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if result.ArtistCount != 5 {
		t.Fatalf("artist count = %d, want 5", result.ArtistCount)
	}
	if result.BatchCount != 1 || result.SuccessCount != 1 {
		t.Fatalf("batches = %d success = %d, want 1/1", result.BatchCount, result.SuccessCount)
	}

	updated, _, err := artistRepo.GetByID(t.Context(), "art_nova_skyline")
	if err != nil {
		t.Fatalf("get refreshed artist: %v", err)
	}
	if updated.Popularity != 95 {
		t.Fatalf("popularity = %d, want 95", updated.Popularity)
	}
}

func TestArtistRefreshService_Refresh_ExplicitIDsSkipRosterLookup(t *testing.T) {
	provider := &countingProvider{byID: map[string]artist.Artist{
		"art_cold_aurora": {ID: "art_cold_aurora", Name: "Cold Aurora", Popularity: 31},
	}}
	svc, _, _ := newRefreshFixture(t, provider)

	result, err := svc.Refresh(t.Context(), RefreshInput{ArtistIDs: []string{"art_cold_aurora", "art_cold_aurora"}})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if result.ArtistCount != 1 {
		t.Fatalf("duplicate ids must collapse, count = %d", result.ArtistCount)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
}

func TestArtistRefreshService_Refresh_ProviderFailureMarksBatchFailed(t *testing.T) {
	provider := &countingProvider{err: errors.New("upstream down")}
	svc, _, rosterRepo := newRefreshFixture(t, provider)
	seedRoster(t, rosterRepo, "user-1")

	result, err := svc.Refresh(t.Context(), RefreshInput{})
	if err != nil {
		t.Fatalf("refresh must not fail outright: %v", err)
	}
	if result.FailedCount != 1 || result.SuccessCount != 0 {
		t.Fatalf("failed = %d success = %d, want 1/0", result.FailedCount, result.SuccessCount)
	}
	if result.Batches[0].Message == "" {
		t.Fatal("failed batch must carry a message")
	}
}

func TestArtistRefreshService_Refresh_NoProviderConfigured(t *testing.T) {
	svc, _, _ := newRefreshFixture(t, nil)

	_, err := svc.Refresh(t.Context(), RefreshInput{})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestArtistRefreshService_Refresh_EmptySeasonIsNoop(t *testing.T) {
	provider := &countingProvider{byID: map[string]artist.Artist{}}
	svc, _, _ := newRefreshFixture(t, provider)

	result, err := svc.Refresh(t.Context(), RefreshInput{})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if result.BatchCount != 0 || provider.calls != 0 {
		t.Fatalf("expected noop, batches = %d calls = %d", result.BatchCount, provider.calls)
	}
}
