package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	qb "github.com/musileague/backend/internal/platform/querybuilder"
)

// PromoRepository reads the promo_points rows written by the external
// mini-games engine. This side never writes them.
type PromoRepository struct {
	db *sqlx.DB
}

func NewPromoRepository(db *sqlx.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

func (r *PromoRepository) GetPointsSince(ctx context.Context, userID string, artistIDs []string, since time.Time) (map[string]int, error) {
	if len(artistIDs) == 0 {
		return map[string]int{}, nil
	}

	values := make([]any, 0, len(artistIDs))
	for _, id := range artistIDs {
		values = append(values, id)
	}

	query, args, err := qb.Select("artist_public_id", "COALESCE(SUM(points), 0) AS points").
		From("promo_points").
		Where(
			qb.Eq("user_id", userID),
			qb.In("artist_public_id", values),
			qb.Gte("awarded_at", since),
		).
		GroupBy("artist_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build promo points query: %w", err)
	}

	type promoRow struct {
		ArtistPublicID string `db:"artist_public_id"`
		Points         int    `db:"points"`
	}

	var rows []promoRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get promo points: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.ArtistPublicID] = row.Points
	}
	return out, nil
}
