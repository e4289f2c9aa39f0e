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

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "pickem-api" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.RepositoryMode != RepositoryMemory {
		t.Fatalf("unexpected RepositoryMode: %q", cfg.RepositoryMode)
	}
	if cfg.TournamentMinStartingWeek != 14 {
		t.Fatalf("unexpected TournamentMinStartingWeek: %d", cfg.TournamentMinStartingWeek)
	}
	if !cfg.CacheEnabled || cfg.CacheTTL != 60*time.Second {
		t.Fatalf("unexpected cache defaults: enabled=%t ttl=%s", cfg.CacheEnabled, cfg.CacheTTL)
	}
	if !cfg.IdentityCircuit.Enabled || cfg.IdentityCircuit.FailureThreshold != 5 {
		t.Fatalf("unexpected identity circuit defaults: %+v", cfg.IdentityCircuit)
	}
}

func TestLoad_RepositoryModeValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("REPOSITORY_MODE", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid REPOSITORY_MODE")
	}
}

func TestLoad_ScoresFeedRequiresTokenWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SCORES_FEED_ENABLED", "true")
	t.Setenv("SCORES_FEED_BASE_URL", "https://scores.example.com")
	t.Setenv("SCORES_FEED_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when SCORES_FEED_ENABLED=true without SCORES_FEED_TOKEN")
	}
}

func TestLoad_ScoresFeedConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SCORES_FEED_ENABLED", "true")
	t.Setenv("SCORES_FEED_BASE_URL", "https://scores.example.com")
	t.Setenv("SCORES_FEED_TOKEN", "token-123")
	t.Setenv("SCORES_FEED_TIMEOUT", "5s")
	t.Setenv("SCORES_FEED_MAX_RETRIES", "2")
	t.Setenv("SCORES_FEED_CIRCUIT_FAILURE_COUNT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.ScoresFeedEnabled {
		t.Fatalf("expected ScoresFeedEnabled=true")
	}
	if cfg.ScoresFeedTimeout != 5*time.Second {
		t.Fatalf("unexpected ScoresFeedTimeout: %s", cfg.ScoresFeedTimeout)
	}
	if cfg.ScoresFeedMaxRetries != 2 {
		t.Fatalf("unexpected ScoresFeedMaxRetries: %d", cfg.ScoresFeedMaxRetries)
	}
	if cfg.ScoresFeedCircuit.FailureThreshold != 3 {
		t.Fatalf("unexpected ScoresFeedCircuit.FailureThreshold: %d", cfg.ScoresFeedCircuit.FailureThreshold)
	}
}

func TestLoad_QStashRequiresJobTokenWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("QSTASH_ENABLED", "true")
	t.Setenv("QSTASH_TOKEN", "qs-token")
	t.Setenv("QSTASH_TARGET_BASE_URL", "https://api.example.com")
	t.Setenv("INTERNAL_JOB_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when QSTASH_ENABLED=true without INTERNAL_JOB_TOKEN")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_TournamentStartingWeekValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("TOURNAMENT_MIN_STARTING_WEEK", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for TOURNAMENT_MIN_STARTING_WEEK=0")
	}
}
