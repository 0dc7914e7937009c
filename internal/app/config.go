package app

import (
	"strings"
	"time"

	"github.com/dmhernandez2525/learning-hall/internal/data/db"
	"github.com/dmhernandez2525/learning-hall/internal/observability"
	"github.com/dmhernandez2525/learning-hall/internal/platform/envutil"
	"github.com/dmhernandez2525/learning-hall/internal/platform/logger"
)

type Config struct {
	Port    string
	LogMode string

	DB db.Config

	// Redis is optional; without it realtime events stay in-process.
	RedisAddr     string
	RedisPassword string
	RedisChannel  string

	JWTSecretKey string
	CORSOrigins  []string

	AutosaveDebounce time.Duration
	HistoryLimit     int
	SessionIdleTTL   time.Duration
	HeuristicsFile   string

	// Template export storage. An empty bucket name keeps templates in the database only.
	TemplateBucketName    string
	TemplateCDNDomain     string
	TemplatePublicBaseURL string
	ObjectStorageMode     string
	StorageEmulatorHost   string

	MetricsEnabled bool
	MetricsAddr    string

	Otel observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    envutil.String("PORT", "8080"),
		LogMode: envutil.String("LOG_MODE", "development"),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", "postgres"),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "learning_hall"),
			SQLitePath:       envutil.String("SQLITE_PATH", ""),
		},
		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisChannel:  envutil.String("REDIS_CHANNEL", ""),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		CORSOrigins:  splitCSV(envutil.String("CORS_ALLOWED_ORIGINS", "")),

		AutosaveDebounce: envutil.Millis("BUILDER_AUTOSAVE_DEBOUNCE_MS", 2*time.Second),
		HistoryLimit:     envutil.Int("BUILDER_HISTORY_LIMIT", 0),
		SessionIdleTTL:   envutil.Seconds("BUILDER_SESSION_IDLE_TTL_SECONDS", 30*time.Minute),
		HeuristicsFile:   envutil.String("BUILDER_HEURISTICS_FILE", ""),

		TemplateBucketName:    envutil.String("TEMPLATE_GCS_BUCKET_NAME", ""),
		TemplateCDNDomain:     envutil.String("TEMPLATE_GCS_CDN_DOMAIN", ""),
		TemplatePublicBaseURL: envutil.String("TEMPLATE_PUBLIC_BASE_URL", ""),
		ObjectStorageMode:     envutil.String("OBJECT_STORAGE_MODE", ""),
		StorageEmulatorHost:   envutil.String("STORAGE_EMULATOR_HOST", ""),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", false),
		MetricsAddr:    envutil.String("METRICS_ADDR", ""),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "learning-hall"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1),
		},
	}

	if log != nil {
		log.Info(
			"Config loaded",
			"port", cfg.Port,
			"db_driver", cfg.DB.Driver,
			"redis", cfg.RedisAddr != "",
			"template_bucket", cfg.TemplateBucketName,
			"autosave_debounce", cfg.AutosaveDebounce.String(),
			"session_idle_ttl", cfg.SessionIdleTTL.String(),
			"metrics", cfg.MetricsEnabled,
			"otel", cfg.Otel.Enabled,
		)
	}
	return cfg
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
