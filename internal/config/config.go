package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/scorekeeper/internal/domain/scoring"
	"github.com/riskibarqy/scorekeeper/internal/platform/logging"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	LogLevel                   logging.Level
	CORSAllowedOrigins         []string
	StorageDriver              string
	DBURL                      string
	DBDisablePreparedBinary    bool
	DBTraceQueryMaxLen         int
	CacheEnabled               bool
	CacheTTL                   time.Duration
	RecorderWorkers            int
	RecorderSaveTimeout        time.Duration
	ActiveSaveTimeout          time.Duration
	WSSendBuffer               int
	MetricsEnabled             bool
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	DefaultRules               scoring.Rules
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	// The state stream keeps connections open, so write timeout bounds single
	// responses only and 0 disables it.
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	logLevel, err := logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}

	storageDriver := strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", StorageMemory)))
	if storageDriver != StorageMemory && storageDriver != StoragePostgres {
		return Config{}, fmt.Errorf("invalid STORAGE_DRIVER %q: valid values are %s, %s", storageDriver, StorageMemory, StoragePostgres)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storageDriver == StoragePostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
	}
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	dbTraceQueryMaxLen, err := getEnvAsInt("DB_TRACE_QUERY_MAX_LEN", 512)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_TRACE_QUERY_MAX_LEN: %w", err)
	}
	if dbTraceQueryMaxLen < 1 {
		return Config{}, fmt.Errorf("DB_TRACE_QUERY_MAX_LEN must be >= 1")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	recorderWorkers, err := getEnvAsInt("RECORDER_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse RECORDER_WORKERS: %w", err)
	}
	if recorderWorkers < 1 {
		return Config{}, fmt.Errorf("RECORDER_WORKERS must be >= 1")
	}
	recorderSaveTimeout, err := time.ParseDuration(getEnv("RECORDER_SAVE_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RECORDER_SAVE_TIMEOUT: %w", err)
	}
	if recorderSaveTimeout <= 0 {
		return Config{}, fmt.Errorf("RECORDER_SAVE_TIMEOUT must be > 0")
	}

	activeSaveTimeout, err := time.ParseDuration(getEnv("ACTIVE_SAVE_TIMEOUT", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ACTIVE_SAVE_TIMEOUT: %w", err)
	}
	if activeSaveTimeout <= 0 {
		return Config{}, fmt.Errorf("ACTIVE_SAVE_TIMEOUT must be > 0")
	}

	wsSendBuffer, err := getEnvAsInt("WS_SEND_BUFFER", 256)
	if err != nil {
		return Config{}, fmt.Errorf("parse WS_SEND_BUFFER: %w", err)
	}
	if wsSendBuffer < 1 {
		return Config{}, fmt.Errorf("WS_SEND_BUFFER must be >= 1")
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	rules, err := loadRules()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "scorekeeper-api"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                readTimeout,
		WriteTimeout:               writeTimeout,
		LogLevel:                   logLevel,
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		StorageDriver:              storageDriver,
		DBURL:                      dbURL,
		DBDisablePreparedBinary:    dbDisablePreparedBinary,
		DBTraceQueryMaxLen:         dbTraceQueryMaxLen,
		CacheEnabled:               cacheEnabled,
		CacheTTL:                   cacheTTL,
		RecorderWorkers:            recorderWorkers,
		RecorderSaveTimeout:        recorderSaveTimeout,
		ActiveSaveTimeout:          activeSaveTimeout,
		WSSendBuffer:               wsSendBuffer,
		MetricsEnabled:             metricsEnabled,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
		DefaultRules:               rules,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

// loadRules overlays RULES_* variables on scoring.DefaultRules.
func loadRules() (scoring.Rules, error) {
	rules := scoring.DefaultRules()
	var err error

	if rules.PointsToWinSet, err = getEnvAsInt("RULES_POINTS_TO_WIN_SET", rules.PointsToWinSet); err != nil {
		return scoring.Rules{}, fmt.Errorf("parse RULES_POINTS_TO_WIN_SET: %w", err)
	}
	if rules.WinByTwo, err = getEnvAsBool("RULES_WIN_BY_TWO", rules.WinByTwo); err != nil {
		return scoring.Rules{}, fmt.Errorf("parse RULES_WIN_BY_TWO: %w", err)
	}
	if rules.NumberOfSets, err = getEnvAsInt("RULES_NUMBER_OF_SETS", rules.NumberOfSets); err != nil {
		return scoring.Rules{}, fmt.Errorf("parse RULES_NUMBER_OF_SETS: %w", err)
	}
	if rules.ServeRotationAfterPoints, err = getEnvAsInt("RULES_SERVE_ROTATION", rules.ServeRotationAfterPoints); err != nil {
		return scoring.Rules{}, fmt.Errorf("parse RULES_SERVE_ROTATION: %w", err)
	}
	if rules.ServeChangeAfterDeuce, err = getEnvAsInt("RULES_SERVE_CHANGE_AFTER_DEUCE", rules.ServeChangeAfterDeuce); err != nil {
		return scoring.Rules{}, fmt.Errorf("parse RULES_SERVE_CHANGE_AFTER_DEUCE: %w", err)
	}
	if rules.WinnerServesNextGame, err = getEnvAsBool("RULES_WINNER_SERVES_NEXT", rules.WinnerServesNextGame); err != nil {
		return scoring.Rules{}, fmt.Errorf("parse RULES_WINNER_SERVES_NEXT: %w", err)
	}
	if rules.NextServer, err = scoring.ParseServingRule(getEnv("RULES_NEXT_SERVER", "")); err != nil {
		return scoring.Rules{}, fmt.Errorf("parse RULES_NEXT_SERVER: %w", err)
	}

	if err := rules.Validate(); err != nil {
		return scoring.Rules{}, fmt.Errorf("invalid default rules: %w", err)
	}
	return rules, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
