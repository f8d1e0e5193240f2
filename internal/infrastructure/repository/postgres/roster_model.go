package postgres

import (
	"database/sql"
	"time"

	"github.com/musileague/backend/internal/domain/roster"
	"github.com/musileague/backend/internal/domain/tier"
)

type rosterTableModel struct {
	ID              int64          `db:"id"`
	UserID          string         `db:"user_id"`
	SeasonPublicID  string         `db:"season_public_id"`
	WeekNumber      int            `db:"week_number"`
	Slot1ArtistID   string         `db:"slot_1_artist_id"`
	Slot1Tier       string         `db:"slot_1_tier"`
	Slot2ArtistID   string         `db:"slot_2_artist_id"`
	Slot2Tier       string         `db:"slot_2_tier"`
	Slot3ArtistID   string         `db:"slot_3_artist_id"`
	Slot3Tier       string         `db:"slot_3_tier"`
	Slot4ArtistID   string         `db:"slot_4_artist_id"`
	Slot4Tier       string         `db:"slot_4_tier"`
	Slot5ArtistID   string         `db:"slot_5_artist_id"`
	Slot5Tier       string         `db:"slot_5_tier"`
	CaptainArtistID sql.NullString `db:"captain_artist_id"`
	LockedAt        time.Time      `db:"locked_at"`
	CreatedAt       time.Time      `db:"created_at"`
}

func (m rosterTableModel) toDomain() roster.Roster {
	item := roster.Roster{
		UserID:     m.UserID,
		SeasonID:   m.SeasonPublicID,
		WeekNumber: m.WeekNumber,
		Slots: [roster.SlotCount]roster.SlotAssignment{
			{ArtistID: m.Slot1ArtistID, Tier: tier.Tier(m.Slot1Tier)},
			{ArtistID: m.Slot2ArtistID, Tier: tier.Tier(m.Slot2Tier)},
			{ArtistID: m.Slot3ArtistID, Tier: tier.Tier(m.Slot3Tier)},
			{ArtistID: m.Slot4ArtistID, Tier: tier.Tier(m.Slot4Tier)},
			{ArtistID: m.Slot5ArtistID, Tier: tier.Tier(m.Slot5Tier)},
		},
		LockedAt:  m.LockedAt,
		CreatedAt: m.CreatedAt,
	}
	if m.CaptainArtistID.Valid {
		item.CaptainID = m.CaptainArtistID.String
	}
	return item
}

type rosterInsertModel struct {
	UserID          string         `db:"user_id"`
	SeasonPublicID  string         `db:"season_public_id"`
	WeekNumber      int            `db:"week_number"`
	Slot1ArtistID   string         `db:"slot_1_artist_id"`
	Slot1Tier       string         `db:"slot_1_tier"`
	Slot2ArtistID   string         `db:"slot_2_artist_id"`
	Slot2Tier       string         `db:"slot_2_tier"`
	Slot3ArtistID   string         `db:"slot_3_artist_id"`
	Slot3Tier       string         `db:"slot_3_tier"`
	Slot4ArtistID   string         `db:"slot_4_artist_id"`
	Slot4Tier       string         `db:"slot_4_tier"`
	Slot5ArtistID   string         `db:"slot_5_artist_id"`
	Slot5Tier       string         `db:"slot_5_tier"`
	CaptainArtistID sql.NullString `db:"captain_artist_id"`
	LockedAt        time.Time      `db:"locked_at"`
}

func rosterToInsertModel(item roster.Roster) rosterInsertModel {
	model := rosterInsertModel{
		UserID:         item.UserID,
		SeasonPublicID: item.SeasonID,
		WeekNumber:     item.WeekNumber,
		Slot1ArtistID:  item.Slots[0].ArtistID,
		Slot1Tier:      string(item.Slots[0].Tier),
		Slot2ArtistID:  item.Slots[1].ArtistID,
		Slot2Tier:      string(item.Slots[1].Tier),
		Slot3ArtistID:  item.Slots[2].ArtistID,
		Slot3Tier:      string(item.Slots[2].Tier),
		Slot4ArtistID:  item.Slots[3].ArtistID,
		Slot4Tier:      string(item.Slots[3].Tier),
		Slot5ArtistID:  item.Slots[4].ArtistID,
		Slot5Tier:      string(item.Slots[4].Tier),
		LockedAt:       item.LockedAt,
	}
	if item.CaptainID != "" {
		model.CaptainArtistID = sql.NullString{String: item.CaptainID, Valid: true}
	}
	return model
}
