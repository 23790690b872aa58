package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Admin        AdminConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	Fulfillment  FulfillmentConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Sendgrid     SendgridConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GYMMEAT_APP_ENV" required:"true"`
	Port         string `envconfig:"GYMMEAT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GYMMEAT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GYMMEAT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GYMMEAT_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GYMMEAT_DB_DSN"`
	Driver string `envconfig:"GYMMEAT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GYMMEAT_DB_HOST"`
	LegacyPort     int    `envconfig:"GYMMEAT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GYMMEAT_DB_USER"`
	LegacyPassword string `envconfig:"GYMMEAT_DB_PASSWORD"`
	LegacyName     string `envconfig:"GYMMEAT_DB_NAME"`
	LegacySSLMode  string `envconfig:"GYMMEAT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GYMMEAT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GYMMEAT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GYMMEAT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GYMMEAT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GYMMEAT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GYMMEAT_REDIS_ADDR"`
	Password     string        `envconfig:"GYMMEAT_REDIS_PASSWORD"`
	DB           int           `envconfig:"GYMMEAT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GYMMEAT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GYMMEAT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GYMMEAT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GYMMEAT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GYMMEAT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GYMMEAT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GYMMEAT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GYMMEAT_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GYMMEAT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// AdminConfig carries the site-admin allowlist, read once at process start.
type AdminConfig struct {
	Emails []string `envconfig:"GYMMEAT_ADMIN_EMAILS"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GYMMEAT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GYMMEAT_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"GYMMEAT_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

// FulfillmentConfig tunes the order workflow jobs.
type FulfillmentConfig struct {
	StaleOrderTTL time.Duration `envconfig:"GYMMEAT_STALE_ORDER_TTL" default:"240h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GYMMEAT_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"GYMMEAT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GYMMEAT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"GYMMEAT_PUBSUB_ORDERS_TOPIC" required:"true"`
	OrdersSubscription string `envconfig:"GYMMEAT_PUBSUB_ORDERS_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"GYMMEAT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"GYMMEAT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"GYMMEAT_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"GYMMEAT_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"GYMMEAT_SENDGRID_FROM_EMAIL"`
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
