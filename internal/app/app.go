package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/musileague/backend/external/jobqueue"
	"github.com/musileague/backend/external/musicmeta"
	"github.com/musileague/backend/internal/config"
	"github.com/musileague/backend/internal/domain/artist"
	"github.com/musileague/backend/internal/domain/profile"
	"github.com/musileague/backend/internal/domain/promo"
	"github.com/musileague/backend/internal/domain/roster"
	"github.com/musileague/backend/internal/domain/season"
	"github.com/musileague/backend/internal/domain/tier"
	"github.com/musileague/backend/internal/domain/weekly"
	"github.com/musileague/backend/internal/infrastructure/account/warden"
	cacherepo "github.com/musileague/backend/internal/infrastructure/repository/cache"
	"github.com/musileague/backend/internal/infrastructure/repository/memory"
	"github.com/musileague/backend/internal/infrastructure/repository/postgres"
	"github.com/musileague/backend/internal/interfaces/httpapi"
	basecache "github.com/musileague/backend/internal/platform/cache"
	idgen "github.com/musileague/backend/internal/platform/id"
	"github.com/musileague/backend/internal/platform/logging"
	"github.com/musileague/backend/internal/platform/resilience"
	"github.com/musileague/backend/internal/usecase"
)

type repositories struct {
	seasons   season.Repository
	artists   artist.Repository
	rosters   roster.Repository
	profiles  profile.Repository
	snapshots weekly.SnapshotRepository
	scores    weekly.ScoreRepository
	promo     promo.PointsSource
}

// NewHTTPServer wires repositories, external clients and usecases into
// a ready HTTP server. The returned shutdown func releases resources
// the server itself does not own, such as the DB pool.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, closeRepos, err := buildRepositories(cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.artists = cacherepo.NewArtistRepository(repos.artists, store)
		repos.seasons = cacherepo.NewSeasonRepository(repos.seasons, store)
	}

	var metadata usecase.ArtistMetadataProvider
	if cfg.MusicMetaEnabled {
		metadata = musicmeta.NewClient(musicmeta.ClientConfig{
			BaseURL:    cfg.MusicMetaBaseURL,
			Token:      cfg.MusicMetaToken,
			Timeout:    cfg.MusicMetaTimeout,
			MaxRetries: cfg.MusicMetaMaxRetries,
			Logger:     logger.Named("musicmeta"),
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.MusicMetaCircuitEnabled,
				FailureThreshold: cfg.MusicMetaCircuitFailureCount,
				OpenTimeout:      cfg.MusicMetaCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.MusicMetaCircuitHalfOpenMaxReq,
			},
		})
	}

	weekSvc := usecase.NewWeekService(repos.seasons, repos.snapshots, repos.scores)
	rosterSvc := usecase.NewRosterService(
		repos.seasons,
		repos.artists,
		repos.rosters,
		repos.profiles,
		repos.snapshots,
		repos.scores,
		weekSvc,
		metadata,
		tier.Bounds{FlagshipMin: cfg.TierFlagshipMin, MidMin: cfg.TierMidMin},
		roster.Pricing{SlotChange: cfg.RosterSlotCost, CaptainChange: cfg.RosterCaptainCost},
		cfg.StartingCoins,
		logger,
	)
	scoringSvc := usecase.NewScoringService(
		repos.artists,
		repos.rosters,
		repos.snapshots,
		repos.scores,
		repos.promo,
		weekSvc,
	)
	seasonSvc := usecase.NewSeasonService(repos.seasons, idgen.NewPrefixedGenerator("season"), logger)
	refreshSvc := usecase.NewArtistRefreshService(repos.seasons, repos.rosters, repos.artists, metadata, logger)

	if cfg.QStashEnabled {
		publisher := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger.Named("qstash"))
		refreshSvc.UseQueue(publisher, cfg.RefreshInterval)

		bootstrapCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := refreshSvc.Bootstrap(bootstrapCtx); err != nil {
			logger.Warn("bootstrap artist refresh schedule failed", "error", err)
		}
		cancel()
	}

	verifier := warden.NewClient(warden.ClientConfig{
		HTTPClient:     &http.Client{Timeout: cfg.WardenTimeout},
		BaseURL:        cfg.WardenBaseURL,
		IntrospectPath: cfg.WardenIntrospectPath,
		CacheTTL:       cfg.WardenCacheTTL,
		CacheMaxSize:   cfg.WardenCacheMaxSize,
		Logger:         logger.Named("warden"),
	})

	handler := httpapi.NewHandler(rosterSvc, scoringSvc, seasonSvc, weekSvc, refreshSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		closeErr := closeRepos(context.Background())
		if closeErr != nil {
			return nil, nil, fmt.Errorf("http server addr cannot be empty (cleanup: %v)", closeErr)
		}
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, closeRepos, nil
}

func buildRepositories(cfg config.Config) (repositories, func(context.Context) error, error) {
	if cfg.RepoBackend == config.RepoMemory {
		return repositories{
			seasons:   memory.NewSeasonRepository(memory.SeedSeasons()),
			artists:   memory.NewArtistRepository(memory.SeedArtists()),
			rosters:   memory.NewRosterRepository(),
			profiles:  memory.NewProfileRepository(),
			snapshots: memory.NewSnapshotRepository(nil),
			scores:    memory.NewScoreRepository(nil),
			promo:     memory.NewPromoRepository(nil),
		}, func(context.Context) error { return nil }, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, nil, err
	}

	repos := repositories{
		seasons:   postgres.NewSeasonRepository(db),
		artists:   postgres.NewArtistRepository(db),
		rosters:   postgres.NewRosterRepository(db),
		profiles:  postgres.NewProfileRepository(db),
		snapshots: postgres.NewSnapshotRepository(db),
		scores:    postgres.NewScoreRepository(db),
		promo:     postgres.NewPromoRepository(db),
	}
	return repos, func(context.Context) error { return db.Close() }, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return postgres.Connect(ctx, postgres.DBConfig{
		DSN:             dsn,
		DBName:          dbNameFromURL(dsn),
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		QueryFormatter:  formatDBQueryForTrace,
	})
}
