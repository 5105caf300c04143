package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Inventory     InventoryConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.JWT.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"IMS_ENV" default:"development"`
	Port         string `envconfig:"IMS_HTTP_PORT" default:"8000"`
	LogLevel     string `envconfig:"IMS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"IMS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"DATABASE_URL"`

	Host     string `envconfig:"IMS_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"IMS_DB_PORT" default:"5432"`
	User     string `envconfig:"IMS_DB_USER" default:"inventory"`
	Password string `envconfig:"IMS_DB_PASSWORD"`
	Name     string `envconfig:"IMS_DB_NAME" default:"inventory"`
	SSLMode  string `envconfig:"IMS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"IMS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"IMS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"IMS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"IMS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"IMS_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"IMS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"IMS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"IMS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"IMS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"IMS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret              string `envconfig:"SECRET_KEY" required:"true"`
	Algorithm           string `envconfig:"ALGORITHM" default:"HS256"`
	Issuer              string `envconfig:"IMS_JWT_ISSUER" default:"inventory-management-system"`
	ExpirationMinutes   int    `envconfig:"ACCESS_TOKEN_EXPIRE_MINUTES" default:"30"`
	RefreshTokenTTLDays int    `envconfig:"IMS_REFRESH_TOKEN_TTL_DAYS" default:"14"`
}

const minSecretLen = 16

var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

func (j JWTConfig) validate() error {
	if len(j.Secret) < minSecretLen {
		return fmt.Errorf("%s must be at least %d bytes", EnvJWTSecret, minSecretLen)
	}
	if _, ok := supportedAlgorithms[strings.ToUpper(strings.TrimSpace(j.Algorithm))]; !ok {
		return fmt.Errorf("unsupported %s %q (want HS256/HS384/HS512)", EnvJWTAlgorithm, j.Algorithm)
	}
	return nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh session TTL configured in days.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLDays <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLDays) * 24 * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"IMS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"IMS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"IMS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"IMS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"IMS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"IMS_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"IMS_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"IMS_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"IMS_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"IMS_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"IMS_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"IMS_AUTO_MIGRATE" default:"false"`
}

type InventoryConfig struct {
	LowStockThreshold int `envconfig:"IMS_LOW_STOCK_THRESHOLD" default:"5"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"IMS_IDEMPOTENCY_TTL" default:"720h"`
	OrderWriteTTL  time.Duration `envconfig:"IMS_IDEMPOTENCY_ORDER_WRITE_TTL" default:"168h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"IMS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"IMS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"IMS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrderEventsTopic      string `envconfig:"IMS_PUBSUB_ORDER_EVENTS_TOPIC" default:"ims-order-events"`
	InventoryEventsTopic  string `envconfig:"IMS_PUBSUB_INVENTORY_EVENTS_TOPIC" default:"ims-inventory-events"`
	WarehouseSubscription string `envconfig:"IMS_PUBSUB_WAREHOUSE_SUBSCRIPTION" default:"ims-warehouse-order-events"`
}

type BigQueryConfig struct {
	Dataset          string `envconfig:"IMS_BIGQUERY_DATASET" default:"inventory"`
	OrderEventsTable string `envconfig:"IMS_BIGQUERY_ORDER_EVENTS_TABLE" default:"order_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"IMS_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"IMS_OUTBOX_POLL_MS" default:"5000"`
	MaxAttempts    int `envconfig:"IMS_OUTBOX_MAX_ATTEMPTS" default:"8"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if db.Host == "" || db.User == "" || db.Name == "" {
		return fmt.Errorf("either %s or %s/%s/%s are required",
			EnvDBDSN, EnvDBHost, EnvDBUser, EnvDBName)
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
