package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Evidence     EvidenceConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
	Lifecycle    LifecycleConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Lifecycle.PlatformFee(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SETTISFY_APP_ENV" required:"true"`
	Port         string `envconfig:"SETTISFY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SETTISFY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SETTISFY_LOG_WARN_STACK" default:"false"`
	// MetricsAddr is where workers serve /metrics; empty turns it off. The
	// API serves /metrics on its own router.
	MetricsAddr string `envconfig:"SETTISFY_METRICS_ADDR" default:":9464"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SETTISFY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"SETTISFY_DB_DSN"`

	LegacyHost     string `envconfig:"SETTISFY_DB_HOST"`
	LegacyPort     int    `envconfig:"SETTISFY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SETTISFY_DB_USER"`
	LegacyPassword string `envconfig:"SETTISFY_DB_PASSWORD"`
	LegacyName     string `envconfig:"SETTISFY_DB_NAME"`
	LegacySSLMode  string `envconfig:"SETTISFY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SETTISFY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SETTISFY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SETTISFY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SETTISFY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"SETTISFY_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SETTISFY_REDIS_URL"`
	Address      string        `envconfig:"SETTISFY_REDIS_ADDRESS"`
	Password     string        `envconfig:"SETTISFY_REDIS_PASSWORD"`
	DB           int           `envconfig:"SETTISFY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SETTISFY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SETTISFY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SETTISFY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SETTISFY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SETTISFY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SETTISFY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SETTISFY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SETTISFY_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenDays  int    `envconfig:"SETTISFY_REFRESH_TOKEN_TTL_DAYS" default:"14"`
}

// RefreshTokenTTL converts the configured day count into a duration.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(j.RefreshTokenDays) * 24 * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SETTISFY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SETTISFY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SETTISFY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SETTISFY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SETTISFY_ARGON_KEY_LEN" default:"32"`
	MinLength        int `envconfig:"SETTISFY_PASSWORD_MIN_LENGTH" default:"10"`
}

type RateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"SETTISFY_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"SETTISFY_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"SETTISFY_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"10"`
	APIWindow       time.Duration `envconfig:"SETTISFY_RATE_LIMIT_API_WINDOW" default:"1m"`
	APILimit        int           `envconfig:"SETTISFY_RATE_LIMIT_API_LIMIT" default:"120"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SETTISFY_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SETTISFY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SETTISFY_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	ConsumerIdempotencyTTL time.Duration `envconfig:"SETTISFY_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SETTISFY_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SETTISFY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SETTISFY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"SETTISFY_GCS_BUCKET_NAME" required:"true"`
	PublicBaseURL string `envconfig:"SETTISFY_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
}

// EvidenceConfig bounds the images attached to payment releases and disputes.
type EvidenceConfig struct {
	MaxImages      int `envconfig:"SETTISFY_EVIDENCE_MAX_IMAGES" default:"5"`
	MaxUploadMB    int `envconfig:"SETTISFY_EVIDENCE_MAX_UPLOAD_MB" default:"10"`
	ImageMaxWidth  int `envconfig:"SETTISFY_EVIDENCE_IMAGE_MAX_WIDTH" default:"1600"`
	ImageMaxHeight int `envconfig:"SETTISFY_EVIDENCE_IMAGE_MAX_HEIGHT" default:"1600"`
	ImageQuality   int `envconfig:"SETTISFY_EVIDENCE_IMAGE_QUALITY" default:"85"`
}

type PubSubConfig struct {
	BookingTopic          string `envconfig:"SETTISFY_PUBSUB_BOOKING_TOPIC" required:"true"`
	AnalyticsSubscription string `envconfig:"SETTISFY_PUBSUB_ANALYTICS_SUBSCRIPTION" required:"true"`
}

type BigQueryConfig struct {
	Dataset            string        `envconfig:"SETTISFY_BIGQUERY_DATASET" default:"settisfy"`
	BookingEventsTable string        `envconfig:"SETTISFY_BIGQUERY_BOOKING_EVENTS_TABLE" default:"booking_events"`
	Location           string        `envconfig:"SETTISFY_BIGQUERY_LOCATION"`
	MaxBytesBilled     int64         `envconfig:"SETTISFY_BIGQUERY_MAX_BYTES_BILLED" default:"1073741824"`
	ReportCacheTTL     time.Duration `envconfig:"SETTISFY_BIGQUERY_REPORT_CACHE_TTL" default:"5m"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SETTISFY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SETTISFY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SETTISFY_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type LifecycleConfig struct {
	DefaultPlatformFee string `envconfig:"SETTISFY_DEFAULT_PLATFORM_FEE" default:"2.00"`
	WarrantyDays       int    `envconfig:"SETTISFY_WARRANTY_DAYS" default:"7"`
}

// PlatformFee parses the fallback fee used when system parameters carry none.
func (l LifecycleConfig) PlatformFee() (decimal.Decimal, error) {
	raw := strings.TrimSpace(l.DefaultPlatformFee)
	if raw == "" {
		return decimal.Zero, nil
	}
	fee, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing default platform fee %q: %w", raw, err)
	}
	if fee.IsNegative() {
		return decimal.Zero, fmt.Errorf("default platform fee must not be negative")
	}
	return fee, nil
}

type CronConfig struct {
	Interval            time.Duration `envconfig:"SETTISFY_CRON_INTERVAL" default:"1h"`
	LockTTL             time.Duration `envconfig:"SETTISFY_CRON_LOCK_TTL" default:"55m"`
	WarrantyBatchSize   int           `envconfig:"SETTISFY_CRON_WARRANTY_BATCH_SIZE" default:"100"`
	OutboxRetentionDays int           `envconfig:"SETTISFY_CRON_OUTBOX_RETENTION_DAYS" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}
	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}
	db.DSN = u.String()
	return nil
}
