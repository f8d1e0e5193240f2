package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/musileague/backend/internal/domain/artist"
	qb "github.com/musileague/backend/internal/platform/querybuilder"
)

type ArtistRepository struct {
	db *sqlx.DB
}

func NewArtistRepository(db *sqlx.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

func (r *ArtistRepository) GetByID(ctx context.Context, artistID string) (artist.Artist, bool, error) {
	query, args, err := qb.Select("*").From("artists").
		Where(qb.Eq("public_id", artistID)).
		ToSQL()
	if err != nil {
		return artist.Artist{}, false, fmt.Errorf("build get artist query: %w", err)
	}

	var row artistTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return artist.Artist{}, false, nil
		}
		return artist.Artist{}, false, fmt.Errorf("get artist by id: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ArtistRepository) GetByIDs(ctx context.Context, artistIDs []string) ([]artist.Artist, error) {
	if len(artistIDs) == 0 {
		return nil, nil
	}

	values := make([]any, 0, len(artistIDs))
	for _, id := range artistIDs {
		values = append(values, id)
	}

	query, args, err := qb.Select("*").From("artists").
		Where(qb.In("public_id", values)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get artists query: %w", err)
	}

	var rows []artistTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get artists by ids: %w", err)
	}

	out := make([]artist.Artist, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ArtistRepository) Upsert(ctx context.Context, items []artist.Artist) error {
	for _, item := range items {
		model := artistInsertModel{
			PublicID:   item.ID,
			Name:       item.Name,
			ImageURL:   item.ImageURL,
			Popularity: item.Popularity,
			Followers:  item.Followers,
			IsFeatured: item.IsFeatured,
			UpdatedAt:  item.UpdatedAt,
		}

		query, args, err := qb.InsertModel("artists", model, `ON CONFLICT (public_id)
DO UPDATE SET
    name = EXCLUDED.name,
    image_url = EXCLUDED.image_url,
    popularity = EXCLUDED.popularity,
    followers = EXCLUDED.followers,
    is_featured = EXCLUDED.is_featured,
    updated_at = EXCLUDED.updated_at`)
		if err != nil {
			return fmt.Errorf("build upsert artist query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert artist %s: %w", item.ID, err)
		}
	}
	return nil
}

func (r *ArtistRepository) IsFeatured(ctx context.Context, artistID string) (bool, error) {
	query, args, err := qb.Select("is_featured").From("artists").
		Where(qb.Eq("public_id", artistID)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build is featured query: %w", err)
	}

	var featured bool
	if err := r.db.GetContext(ctx, &featured, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get artist featured flag: %w", err)
	}
	return featured, nil
}

func (r *ArtistRepository) ListIDs(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("public_id").From("artists").
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list artist ids query: %w", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list artist ids: %w", err)
	}
	return ids, nil
}
