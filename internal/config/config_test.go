package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_RepoBackendValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("defaults to postgres", func(t *testing.T) {
		t.Setenv("REPO_BACKEND", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.RepoBackend != RepoPostgres {
			t.Fatalf("unexpected default repo backend: %q", cfg.RepoBackend)
		}
	})

	t.Run("memory accepted", func(t *testing.T) {
		t.Setenv("REPO_BACKEND", "memory")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.RepoBackend != RepoMemory {
			t.Fatalf("unexpected repo backend: %q", cfg.RepoBackend)
		}
	})

	t.Run("unknown rejected", func(t *testing.T) {
		t.Setenv("REPO_BACKEND", "dynamo")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid REPO_BACKEND")
		}
	})
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_BetterStackRequiresEndpointWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BETTERSTACK_ENABLED=true without BETTERSTACK_ENDPOINT")
	}
}

func TestLoad_BetterStackConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "s1765114.eu-fsn-3.betterstackdata.com")
	t.Setenv("BETTERSTACK_TOKEN", "token-123")
	t.Setenv("BETTERSTACK_TIMEOUT", "4s")
	t.Setenv("BETTERSTACK_MIN_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.BetterStackEnabled {
		t.Fatalf("expected BetterStackEnabled=true")
	}
	if cfg.BetterStackEndpoint != "s1765114.eu-fsn-3.betterstackdata.com" {
		t.Fatalf("unexpected BetterStackEndpoint: %q", cfg.BetterStackEndpoint)
	}
	if cfg.BetterStackToken != "token-123" {
		t.Fatalf("unexpected BetterStackToken")
	}
	if cfg.BetterStackTimeout != 4*time.Second {
		t.Fatalf("unexpected BetterStackTimeout: %s", cfg.BetterStackTimeout)
	}
	if cfg.BetterStackMinLevel.String() != "warn" {
		t.Fatalf("unexpected BetterStackMinLevel: %s", cfg.BetterStackMinLevel.String())
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "musileague-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "musileague-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.musileague.dev, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://app.musileague.dev" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_WardenConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("WARDEN_BASE_URL", "https://warden.musileague.dev")
	t.Setenv("WARDEN_INTROSPECT_PATH", "/v1/tokens/introspect")
	t.Setenv("WARDEN_TIMEOUT", "2s")
	t.Setenv("WARDEN_CACHE_TTL", "45s")
	t.Setenv("WARDEN_CACHE_MAX_SIZE", "512")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.WardenBaseURL != "https://warden.musileague.dev" {
		t.Fatalf("unexpected warden base url: %q", cfg.WardenBaseURL)
	}
	if cfg.WardenTimeout != 2*time.Second {
		t.Fatalf("unexpected warden timeout: %s", cfg.WardenTimeout)
	}
	if cfg.WardenCacheTTL != 45*time.Second {
		t.Fatalf("unexpected warden cache ttl: %s", cfg.WardenCacheTTL)
	}
	if cfg.WardenCacheMaxSize != 512 {
		t.Fatalf("unexpected warden cache max size: %d", cfg.WardenCacheMaxSize)
	}
}

func TestLoad_MusicMetaConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("MUSICMETA_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.MusicMetaEnabled {
			t.Fatalf("expected MusicMetaEnabled=false by default")
		}
		if cfg.MusicMetaBaseURL != "https://api.musicmeta.dev/v1" {
			t.Fatalf("unexpected default base url: %q", cfg.MusicMetaBaseURL)
		}
	})

	t.Run("enabled requires token", func(t *testing.T) {
		t.Setenv("MUSICMETA_ENABLED", "true")
		t.Setenv("MUSICMETA_TOKEN", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when MUSICMETA_ENABLED=true without token")
		}
	})

	t.Run("enabled with valid values", func(t *testing.T) {
		t.Setenv("MUSICMETA_ENABLED", "true")
		t.Setenv("MUSICMETA_TOKEN", "token")
		t.Setenv("MUSICMETA_TIMEOUT", "15s")
		t.Setenv("MUSICMETA_MAX_RETRIES", "2")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.MusicMetaEnabled {
			t.Fatalf("expected MusicMetaEnabled=true")
		}
		if cfg.MusicMetaTimeout != 15*time.Second {
			t.Fatalf("unexpected timeout: %s", cfg.MusicMetaTimeout)
		}
		if cfg.MusicMetaMaxRetries != 2 {
			t.Fatalf("unexpected max retries: %d", cfg.MusicMetaMaxRetries)
		}
	})
}

func TestLoad_QStashConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("disabled by default", func(t *testing.T) {
		t.Setenv("QSTASH_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.QStashEnabled {
			t.Fatalf("expected QStashEnabled=false by default")
		}
		if cfg.RefreshInterval != 6*time.Hour {
			t.Fatalf("unexpected default refresh interval: %s", cfg.RefreshInterval)
		}
		if cfg.RefreshMaxWorkers != 4 {
			t.Fatalf("unexpected default refresh workers: %d", cfg.RefreshMaxWorkers)
		}
	})

	t.Run("enabled requires token and target and internal token", func(t *testing.T) {
		t.Setenv("QSTASH_ENABLED", "true")
		t.Setenv("QSTASH_TOKEN", "")
		t.Setenv("QSTASH_TARGET_BASE_URL", "")
		t.Setenv("INTERNAL_JOB_TOKEN", "")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error when QSTASH_ENABLED=true without required env")
		}
	})

	t.Run("enabled with required values", func(t *testing.T) {
		t.Setenv("QSTASH_ENABLED", "true")
		t.Setenv("QSTASH_TOKEN", "qstash-token")
		t.Setenv("QSTASH_TARGET_BASE_URL", "https://musileague.fly.dev")
		t.Setenv("INTERNAL_JOB_TOKEN", "internal-job-token")
		t.Setenv("QSTASH_RETRIES", "2")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.QStashEnabled {
			t.Fatalf("expected QStashEnabled=true")
		}
		if cfg.QStashRetries != 2 {
			t.Fatalf("unexpected qstash retries: %d", cfg.QStashRetries)
		}
		if cfg.InternalJobToken != "internal-job-token" {
			t.Fatalf("unexpected internal job token: %q", cfg.InternalJobToken)
		}
	})
}

func TestLoad_GameRulesParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.TierFlagshipMin != 66 || cfg.TierMidMin != 36 {
			t.Fatalf("unexpected tier bounds: flagship=%d mid=%d", cfg.TierFlagshipMin, cfg.TierMidMin)
		}
		if cfg.RosterSlotCost != 20 || cfg.RosterCaptainCost != 10 {
			t.Fatalf("unexpected roster costs: slot=%d captain=%d", cfg.RosterSlotCost, cfg.RosterCaptainCost)
		}
		if cfg.StartingCoins != 100 {
			t.Fatalf("unexpected starting coins: %d", cfg.StartingCoins)
		}
	})

	t.Run("mid bound must stay below flagship", func(t *testing.T) {
		t.Setenv("TIER_FLAGSHIP_MIN", "50")
		t.Setenv("TIER_MID_MIN", "50")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when TIER_MID_MIN >= TIER_FLAGSHIP_MIN")
		}
	})
}
