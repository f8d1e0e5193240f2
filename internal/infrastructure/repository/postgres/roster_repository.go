package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/musileague/backend/internal/domain/roster"
	qb "github.com/musileague/backend/internal/platform/querybuilder"
)

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) GetLatest(ctx context.Context, userID, seasonID string) (roster.Roster, bool, error) {
	query, args, err := qb.Select("*").From("rosters").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("season_public_id", seasonID),
		).
		OrderBy("week_number DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return roster.Roster{}, false, fmt.Errorf("build get latest roster query: %w", err)
	}

	var row rosterTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Roster{}, false, nil
		}
		return roster.Roster{}, false, fmt.Errorf("get latest roster: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *RosterRepository) GetForWeek(ctx context.Context, userID, seasonID string, weekNumber int) (roster.Roster, bool, error) {
	query, args, err := qb.Select("*").From("rosters").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("season_public_id", seasonID),
			qb.Lte("week_number", weekNumber),
		).
		OrderBy("week_number DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return roster.Roster{}, false, fmt.Errorf("build get roster for week query: %w", err)
	}

	var row rosterTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Roster{}, false, nil
		}
		return roster.Roster{}, false, fmt.Errorf("get roster for week: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *RosterRepository) Insert(ctx context.Context, item roster.Roster) error {
	query, args, err := qb.InsertModel("rosters", rosterToInsertModel(item), "")
	if err != nil {
		return fmt.Errorf("build insert roster query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user=%s season=%s week=%d",
				roster.ErrDuplicateWeek, item.UserID, item.SeasonID, item.WeekNumber)
		}
		return fmt.Errorf("insert roster: %w", err)
	}
	return nil
}

func (r *RosterRepository) Replace(ctx context.Context, item roster.Roster) error {
	query, args, err := qb.Update("rosters").
		Set("slot_1_artist_id", item.Slots[0].ArtistID).
		Set("slot_1_tier", string(item.Slots[0].Tier)).
		Set("slot_2_artist_id", item.Slots[1].ArtistID).
		Set("slot_2_tier", string(item.Slots[1].Tier)).
		Set("slot_3_artist_id", item.Slots[2].ArtistID).
		Set("slot_3_tier", string(item.Slots[2].Tier)).
		Set("slot_4_artist_id", item.Slots[3].ArtistID).
		Set("slot_4_tier", string(item.Slots[3].Tier)).
		Set("slot_5_artist_id", item.Slots[4].ArtistID).
		Set("slot_5_tier", string(item.Slots[4].Tier)).
		Set("captain_artist_id", rosterToInsertModel(item).CaptainArtistID).
		Set("locked_at", item.LockedAt).
		Where(
			qb.Eq("user_id", item.UserID),
			qb.Eq("season_public_id", item.SeasonID),
			qb.Eq("week_number", item.WeekNumber),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build replace roster query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("replace roster: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace roster rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("roster user=%s season=%s week=%d not found",
			item.UserID, item.SeasonID, item.WeekNumber)
	}
	return nil
}

func (r *RosterRepository) ListRosteredArtistIDs(ctx context.Context, seasonID string) ([]string, error) {
	query, args, err := qb.Select(
		"slot_1_artist_id", "slot_2_artist_id", "slot_3_artist_id",
		"slot_4_artist_id", "slot_5_artist_id",
	).From("rosters").
		Where(qb.Eq("season_public_id", seasonID)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rostered artists query: %w", err)
	}

	type slotRow struct {
		Slot1 string `db:"slot_1_artist_id"`
		Slot2 string `db:"slot_2_artist_id"`
		Slot3 string `db:"slot_3_artist_id"`
		Slot4 string `db:"slot_4_artist_id"`
		Slot5 string `db:"slot_5_artist_id"`
	}

	var rows []slotRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rostered artists: %w", err)
	}

	seen := make(map[string]struct{}, len(rows)*5)
	out := make([]string, 0, len(rows)*5)
	for _, row := range rows {
		for _, id := range []string{row.Slot1, row.Slot2, row.Slot3, row.Slot4, row.Slot5} {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}
