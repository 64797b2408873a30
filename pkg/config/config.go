package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "convite"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Sync         SyncConfig
	Outbox       OutboxConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensure(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CONVITE_APP_ENV" required:"true"`
	Port         string `envconfig:"CONVITE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CONVITE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CONVITE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig selects the storage capability once at boot: the hosted Postgres
// store or the local SQLite store. Nothing downstream re-reads the mode.
type DBConfig struct {
	Driver     string `envconfig:"CONVITE_DB_DRIVER" default:"postgres"`
	DSN        string `envconfig:"CONVITE_DB_DSN"`
	SQLitePath string `envconfig:"CONVITE_DB_SQLITE_PATH" default:"file::memory:?cache=shared"`

	Host     string `envconfig:"CONVITE_DB_HOST"`
	Port     int    `envconfig:"CONVITE_DB_PORT" default:"5432"`
	User     string `envconfig:"CONVITE_DB_USER"`
	Password string `envconfig:"CONVITE_DB_PASSWORD"`
	Name     string `envconfig:"CONVITE_DB_NAME"`
	SSLMode  string `envconfig:"CONVITE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CONVITE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CONVITE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CONVITE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CONVITE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"CONVITE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CONVITE_REDIS_ADDR"`
	Password     string        `envconfig:"CONVITE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CONVITE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CONVITE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CONVITE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CONVITE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CONVITE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CONVITE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CONVITE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"CONVITE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CONVITE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ChangeTopic        string `envconfig:"CONVITE_PUBSUB_CHANGE_TOPIC" required:"true"`
	ChangeSubscription string `envconfig:"CONVITE_PUBSUB_CHANGE_SUBSCRIPTION" required:"true"`
}

type SyncConfig struct {
	PollInterval   time.Duration `envconfig:"CONVITE_SYNC_POLL_INTERVAL" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"CONVITE_SYNC_IDEMPOTENCY_TTL" default:"720h"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CONVITE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CONVITE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CONVITE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CONVITE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensure() error {
	if db.IsSQLite() {
		if db.SQLitePath == "" {
			return fmt.Errorf("CONVITE_DB_SQLITE_PATH is required for the sqlite driver")
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	discrete := map[string]string{
		"CONVITE_DB_HOST": db.Host,
		"CONVITE_DB_USER": db.User,
		"CONVITE_DB_NAME": db.Name,
	}
	for _, key := range []string{"CONVITE_DB_HOST", "CONVITE_DB_USER", "CONVITE_DB_NAME"} {
		if discrete[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either CONVITE_DB_DSN or %s are required", strings.Join(missing, ", "))
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
