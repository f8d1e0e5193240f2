package season

import "context"

type Repository interface {
	GetActive(ctx context.Context) (Season, bool, error)
	GetByID(ctx context.Context, seasonID string) (Season, bool, error)
	Insert(ctx context.Context, item Season) error
	Update(ctx context.Context, item Season) error
}
