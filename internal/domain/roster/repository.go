package roster

import (
	"context"
	"errors"
)

// ErrDuplicateWeek is returned by Insert when a row already exists
// for (user, season, week). Two concurrent submissions racing to the
// same target week must fail loudly instead of silently overwriting.
var ErrDuplicateWeek = errors.New("roster already exists for week")

type Repository interface {
	// GetLatest returns the most recent committed version for the
	// user in the season, regardless of week number.
	GetLatest(ctx context.Context, userID, seasonID string) (Roster, bool, error)
	// GetForWeek returns the version in effect at weekNumber: the
	// exact row when present, otherwise the most recent row with a
	// lower week number (carry-over semantics).
	GetForWeek(ctx context.Context, userID, seasonID string, weekNumber int) (Roster, bool, error)
	// Insert creates a new version; ErrDuplicateWeek on a uniqueness
	// violation.
	Insert(ctx context.Context, item Roster) error
	// Replace overwrites the existing row for (user, season, week).
	// Used when a user resubmits for a target week already committed.
	Replace(ctx context.Context, item Roster) error
	// ListRosteredArtistIDs returns the distinct artist ids appearing
	// in any roster version of the season.
	ListRosteredArtistIDs(ctx context.Context, seasonID string) ([]string, error)
}

// ArtistLister is the narrow read the refresh job needs.
type ArtistLister interface {
	ListRosteredArtistIDs(ctx context.Context, seasonID string) ([]string, error)
}
