package postgres

import (
	"time"

	"github.com/musileague/backend/internal/domain/artist"
)

type artistTableModel struct {
	ID         int64     `db:"id"`
	PublicID   string    `db:"public_id"`
	Name       string    `db:"name"`
	ImageURL   string    `db:"image_url"`
	Popularity int       `db:"popularity"`
	Followers  int64     `db:"followers"`
	IsFeatured bool      `db:"is_featured"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (m artistTableModel) toDomain() artist.Artist {
	return artist.Artist{
		ID:         m.PublicID,
		Name:       m.Name,
		ImageURL:   m.ImageURL,
		Popularity: m.Popularity,
		Followers:  m.Followers,
		IsFeatured: m.IsFeatured,
		UpdatedAt:  m.UpdatedAt,
	}
}

type artistInsertModel struct {
	PublicID   string    `db:"public_id"`
	Name       string    `db:"name"`
	ImageURL   string    `db:"image_url"`
	Popularity int       `db:"popularity"`
	Followers  int64     `db:"followers"`
	IsFeatured bool      `db:"is_featured"`
	UpdatedAt  time.Time `db:"updated_at"`
}
