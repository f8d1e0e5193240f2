package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/musileague/backend/internal/domain/profile"
	qb "github.com/musileague/backend/internal/platform/querybuilder"
)

type profileTableModel struct {
	ID         int64     `db:"id"`
	UserID     string    `db:"user_id"`
	MusiCoins  int64     `db:"musi_coins"`
	TotalScore float64   `db:"total_score"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (m profileTableModel) toDomain() profile.Profile {
	return profile.Profile{
		UserID:     m.UserID,
		MusiCoins:  m.MusiCoins,
		TotalScore: m.TotalScore,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

type profileInsertModel struct {
	UserID     string    `db:"user_id"`
	MusiCoins  int64     `db:"musi_coins"`
	TotalScore float64   `db:"total_score"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID string, startingCoins int64) (profile.Profile, error) {
	now := time.Now().UTC()
	model := profileInsertModel{
		UserID:    userID,
		MusiCoins: startingCoins,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Losing the insert race is fine, the existing row wins.
	query, args, err := qb.InsertModel("profiles", model, "ON CONFLICT (user_id) DO NOTHING")
	if err != nil {
		return profile.Profile{}, fmt.Errorf("build insert profile query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return profile.Profile{}, fmt.Errorf("insert profile: %w", err)
	}

	return r.get(ctx, userID)
}

func (r *ProfileRepository) get(ctx context.Context, userID string) (profile.Profile, error) {
	query, args, err := qb.Select("*").From("profiles").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return profile.Profile{}, fmt.Errorf("build get profile query: %w", err)
	}

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return row.toDomain(), nil
}

// Debit is a conditional update: the deduction happens only when the
// balance covers it, in one statement, so concurrent spends can never
// drive the balance negative.
func (r *ProfileRepository) Debit(ctx context.Context, userID string, amount int64) (profile.Profile, error) {
	query, args, err := qb.Update("profiles").
		SetExpr("musi_coins", "musi_coins - ?", amount).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("user_id", userID),
			qb.Gte("musi_coins", amount),
		).
		Suffix("RETURNING id, user_id, musi_coins, total_score, created_at, updated_at").
		ToSQL()
	if err != nil {
		return profile.Profile{}, fmt.Errorf("build debit query: %w", err)
	}

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return profile.Profile{}, fmt.Errorf("%w: user=%s amount=%d",
				profile.ErrInsufficientFunds, userID, amount)
		}
		return profile.Profile{}, fmt.Errorf("debit profile: %w", err)
	}
	return row.toDomain(), nil
}

func (r *ProfileRepository) Credit(ctx context.Context, userID string, amount int64) error {
	query, args, err := qb.Update("profiles").
		SetExpr("musi_coins", "musi_coins + ?", amount).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build credit query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("credit profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit profile rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("profile %s not found", userID)
	}
	return nil
}

func (r *ProfileRepository) AddScore(ctx context.Context, userID string, delta float64) error {
	query, args, err := qb.Update("profiles").
		SetExpr("total_score", "total_score + ?", delta).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build add score query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("add profile score: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("add profile score rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("profile %s not found", userID)
	}
	return nil
}
