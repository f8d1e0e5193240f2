package cache

import (
	"context"
	"sort"
	"strings"

	"github.com/musileague/backend/internal/domain/artist"
	"github.com/musileague/backend/internal/domain/season"
	basecache "github.com/musileague/backend/internal/platform/cache"
)

// ArtistRepository is a read-through cache in front of the persistent artist
// store. Upsert invalidates the whole artist key family so stale tiers never
// survive a metadata refresh.
type ArtistRepository struct {
	next  artist.Repository
	cache *basecache.Store
}

func NewArtistRepository(next artist.Repository, cache *basecache.Store) *ArtistRepository {
	return &ArtistRepository{next: next, cache: cache}
}

func (r *ArtistRepository) GetByID(ctx context.Context, artistID string) (artist.Artist, bool, error) {
	key := "artist:id:" + artistID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, artistID)
		if err != nil {
			return nil, err
		}
		return cachedArtistByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return artist.Artist{}, false, err
	}

	cached, _ := v.(cachedArtistByID)
	return cached.value, cached.exists, nil
}

func (r *ArtistRepository) GetByIDs(ctx context.Context, artistIDs []string) ([]artist.Artist, error) {
	key := artistSetKey(artistIDs)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.GetByIDs(ctx, artistIDs)
		if err != nil {
			return nil, err
		}
		return append([]artist.Artist(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]artist.Artist)
	return append([]artist.Artist(nil), items...), nil
}

func (r *ArtistRepository) Upsert(ctx context.Context, entries []artist.Artist) error {
	if err := r.next.Upsert(ctx, entries); err != nil {
		return err
	}

	r.cache.DeletePrefix(ctx, "artist:")
	return nil
}

func (r *ArtistRepository) IsFeatured(ctx context.Context, artistID string) (bool, error) {
	key := "artist:featured:" + artistID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return r.next.IsFeatured(ctx, artistID)
	})
	if err != nil {
		return false, err
	}

	featured, _ := v.(bool)
	return featured, nil
}

func (r *ArtistRepository) ListIDs(ctx context.Context) ([]string, error) {
	v, err := r.cache.GetOrLoad(ctx, "artist:ids", func(ctx context.Context) (any, error) {
		ids, err := r.next.ListIDs(ctx)
		if err != nil {
			return nil, err
		}
		return append([]string(nil), ids...), nil
	})
	if err != nil {
		return nil, err
	}

	ids, _ := v.([]string)
	return append([]string(nil), ids...), nil
}

type cachedArtistByID struct {
	value  artist.Artist
	exists bool
}

// artistSetKey is order-insensitive so permutations of the same roster share
// one cache entry.
func artistSetKey(artistIDs []string) string {
	ids := append([]string(nil), artistIDs...)
	sort.Strings(ids)
	return "artist:set:" + strings.Join(ids, ",")
}

// SeasonRepository caches season reads, which sit on the hot path of every
// roster commit and score fetch. Writes pass through and invalidate.
type SeasonRepository struct {
	next  season.Repository
	cache *basecache.Store
}

func NewSeasonRepository(next season.Repository, cache *basecache.Store) *SeasonRepository {
	return &SeasonRepository{next: next, cache: cache}
}

func (r *SeasonRepository) GetActive(ctx context.Context) (season.Season, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "season:active", func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetActive(ctx)
		if err != nil {
			return nil, err
		}
		return cachedSeason{value: item, exists: exists}, nil
	})
	if err != nil {
		return season.Season{}, false, err
	}

	cached, _ := v.(cachedSeason)
	return cached.value, cached.exists, nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	key := "season:id:" + seasonID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, seasonID)
		if err != nil {
			return nil, err
		}
		return cachedSeason{value: item, exists: exists}, nil
	})
	if err != nil {
		return season.Season{}, false, err
	}

	cached, _ := v.(cachedSeason)
	return cached.value, cached.exists, nil
}

func (r *SeasonRepository) Insert(ctx context.Context, item season.Season) error {
	if err := r.next.Insert(ctx, item); err != nil {
		return err
	}

	r.cache.DeletePrefix(ctx, "season:")
	return nil
}

func (r *SeasonRepository) Update(ctx context.Context, item season.Season) error {
	if err := r.next.Update(ctx, item); err != nil {
		return err
	}

	r.cache.DeletePrefix(ctx, "season:")
	return nil
}

type cachedSeason struct {
	value  season.Season
	exists bool
}
