package artist

import "context"

// Repository is the artist cache. Upsert is idempotent per artist id.
type Repository interface {
	GetByID(ctx context.Context, artistID string) (Artist, bool, error)
	GetByIDs(ctx context.Context, artistIDs []string) ([]Artist, error)
	Upsert(ctx context.Context, entries []Artist) error
	IsFeatured(ctx context.Context, artistID string) (bool, error)
	ListIDs(ctx context.Context) ([]string, error)
}
