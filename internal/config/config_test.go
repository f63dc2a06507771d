package config

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/scorekeeper/internal/domain/scoring"
	"github.com/riskibarqy/scorekeeper/internal/platform/logging"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AppEnv != EnvDev || cfg.StorageDriver != StorageMemory {
		t.Fatalf("unexpected env/storage defaults: %q %q", cfg.AppEnv, cfg.StorageDriver)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected default log level: %v", cfg.LogLevel)
	}
	if cfg.RecorderWorkers != 4 || cfg.RecorderSaveTimeout != 5*time.Second {
		t.Fatalf("unexpected recorder defaults: %d %s", cfg.RecorderWorkers, cfg.RecorderSaveTimeout)
	}
	if cfg.ActiveSaveTimeout != 2*time.Second {
		t.Fatalf("unexpected active save timeout default: %s", cfg.ActiveSaveTimeout)
	}
	if cfg.WSSendBuffer != 256 || !cfg.MetricsEnabled {
		t.Fatalf("unexpected stream/metrics defaults: %d %t", cfg.WSSendBuffer, cfg.MetricsEnabled)
	}
	if cfg.DefaultRules != scoring.DefaultRules() {
		t.Fatalf("expected default rules, got %+v", cfg.DefaultRules)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `foo=bar, uptrace-dsn="https://token@api.uptrace.dev"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev" {
		t.Fatalf("unexpected dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_StorageDriver(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("invalid driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORAGE_DRIVER")
		}
	})

	t.Run("postgres requires db url", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "postgres")
		t.Setenv("DB_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when STORAGE_DRIVER=postgres without DB_URL")
		}
	})

	t.Run("postgres with db url", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", " Postgres ")
		t.Setenv("DB_URL", "postgres://u:p@localhost:5432/scores?sslmode=disable")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StorageDriver != StoragePostgres {
			t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
		}
	})
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
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
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "scorekeeper-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "scorekeeper-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
		t.Fatalf("unexpected CORS origins: %+v", cfg.CORSAllowedOrigins)
	}
}

func TestLoad_NumericBounds(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "CACHE_TTL", value: "bad"},
		{key: "CACHE_TTL", value: "0s"},
		{key: "RECORDER_WORKERS", value: "0"},
		{key: "RECORDER_SAVE_TIMEOUT", value: "-1s"},
		{key: "ACTIVE_SAVE_TIMEOUT", value: "0s"},
		{key: "DB_TRACE_QUERY_MAX_LEN", value: "0"},
		{key: "WS_SEND_BUFFER", value: "x"},
		{key: "APP_LOG_LEVEL", value: "verbose"},
		{key: "DB_DISABLE_PREPARED_BINARY_RESULT", value: "not-bool"},
	}

	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_RulesOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("RULES_POINTS_TO_WIN_SET", "21")
	t.Setenv("RULES_WIN_BY_TWO", "false")
	t.Setenv("RULES_NUMBER_OF_SETS", "3")
	t.Setenv("RULES_SERVE_ROTATION", "5")
	t.Setenv("RULES_SERVE_CHANGE_AFTER_DEUCE", "0")
	t.Setenv("RULES_WINNER_SERVES_NEXT", "false")
	t.Setenv("RULES_NEXT_SERVER", "loser")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := scoring.Rules{
		PointsToWinSet:           21,
		WinByTwo:                 false,
		NumberOfSets:             3,
		ServeRotationAfterPoints: 5,
		ServeChangeAfterDeuce:    0,
		WinnerServesNextGame:     false,
		NextServer:               scoring.ServingRuleLoser,
	}
	if cfg.DefaultRules != want {
		t.Fatalf("unexpected rules: %+v", cfg.DefaultRules)
	}
}

func TestLoad_RulesValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("RULES_SERVE_ROTATION", "0")

	_, err := Load()
	if !errors.Is(err, scoring.ErrInvalidServeRotation) {
		t.Fatalf("expected ErrInvalidServeRotation, got %v", err)
	}
}

func TestLoad_RulesUnknownServingRule(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("RULES_NEXT_SERVER", "coin-toss")

	if _, err := Load(); !errors.Is(err, scoring.ErrUnknownServingRule) {
		t.Fatalf("expected ErrUnknownServingRule, got %v", err)
	}
}
