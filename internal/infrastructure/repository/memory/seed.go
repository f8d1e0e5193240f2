package memory

import (
	"time"

	"github.com/musileague/backend/internal/domain/artist"
	"github.com/musileague/backend/internal/domain/season"
)

const SeasonIDAutumn2026 = "ssn_autumn_2026_dev"

func SeedSeasons() []season.Season {
	starts := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	return []season.Season{
		{
			ID:        SeasonIDAutumn2026,
			Name:      "Autumn 2026",
			StartsAt:  starts,
			EndsAt:    starts.AddDate(0, 3, 0),
			IsActive:  true,
			Status:    season.StatusActive,
			CreatedAt: starts,
			UpdatedAt: starts,
		},
	}
}

func SeedArtists() []artist.Artist {
	updated := time.Date(2026, time.August, 31, 6, 0, 0, 0, time.UTC)
	return []artist.Artist{
		{ID: "art_nova_skyline", Name: "Nova Skyline", Popularity: 91, Followers: 48_200_000, IsFeatured: true, UpdatedAt: updated},
		{ID: "art_vandal_heart", Name: "Vandal Heart", Popularity: 78, Followers: 22_900_000, UpdatedAt: updated},
		{ID: "art_glass_harbor", Name: "Glass Harbor", Popularity: 70, Followers: 15_400_000, UpdatedAt: updated},
		{ID: "art_midnight_metro", Name: "Midnight Metro", Popularity: 58, Followers: 6_100_000, UpdatedAt: updated},
		{ID: "art_paper_lanterns", Name: "Paper Lanterns", Popularity: 51, Followers: 4_800_000, UpdatedAt: updated},
		{ID: "art_juno_district", Name: "Juno District", Popularity: 44, Followers: 2_300_000, UpdatedAt: updated},
		{ID: "art_wren_and_wire", Name: "Wren & Wire", Popularity: 37, Followers: 1_700_000, UpdatedAt: updated},
		{ID: "art_cold_aurora", Name: "Cold Aurora", Popularity: 29, Followers: 640_000, UpdatedAt: updated},
		{ID: "art_static_bloom", Name: "Static Bloom", Popularity: 21, Followers: 310_000, UpdatedAt: updated},
		{ID: "art_hollow_pines", Name: "Hollow Pines", Popularity: 12, Followers: 95_000, UpdatedAt: updated},
	}
}
