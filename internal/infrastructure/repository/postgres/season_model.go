package postgres

import (
	"time"

	"github.com/musileague/backend/internal/domain/season"
)

type seasonTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	Name      string    `db:"name"`
	StartsAt  time.Time `db:"starts_at"`
	EndsAt    time.Time `db:"ends_at"`
	IsActive  bool      `db:"is_active"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (m seasonTableModel) toDomain() season.Season {
	return season.Season{
		ID:        m.PublicID,
		Name:      m.Name,
		StartsAt:  m.StartsAt,
		EndsAt:    m.EndsAt,
		IsActive:  m.IsActive,
		Status:    season.Status(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type seasonInsertModel struct {
	PublicID  string    `db:"public_id"`
	Name      string    `db:"name"`
	StartsAt  time.Time `db:"starts_at"`
	EndsAt    time.Time `db:"ends_at"`
	IsActive  bool      `db:"is_active"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
