package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
	Clerk ClerkConfig
	Cron  CronConfig
	CORS  CORSConfig

	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"INKWELL_APP_ENV" required:"true"`
	Port         string `envconfig:"INKWELL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"INKWELL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"INKWELL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"INKWELL_DB_DSN"`
	Driver string `envconfig:"INKWELL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"INKWELL_DB_HOST"`
	LegacyPort     int    `envconfig:"INKWELL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"INKWELL_DB_USER"`
	LegacyPassword string `envconfig:"INKWELL_DB_PASSWORD"`
	LegacyName     string `envconfig:"INKWELL_DB_NAME"`
	LegacySSLMode  string `envconfig:"INKWELL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"INKWELL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INKWELL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INKWELL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INKWELL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"INKWELL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"INKWELL_REDIS_ADDR"`
	Password     string        `envconfig:"INKWELL_REDIS_PASSWORD"`
	DB           int           `envconfig:"INKWELL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INKWELL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INKWELL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INKWELL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INKWELL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INKWELL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ClerkConfig carries everything needed to trust Clerk-issued credentials.
type ClerkConfig struct {
	WebhookSecret   string        `envconfig:"INKWELL_CLERK_WEBHOOK_SECRET" required:"true"`
	JWTPublicKey    string        `envconfig:"INKWELL_CLERK_JWT_PUBLIC_KEY" required:"true"`
	Issuer          string        `envconfig:"INKWELL_CLERK_ISSUER"`
	WebhookDedupTTL time.Duration `envconfig:"INKWELL_CLERK_WEBHOOK_DEDUP_TTL" default:"72h"`
}

type CronConfig struct {
	MonthlySpec string        `envconfig:"INKWELL_CRON_MONTHLY_SPEC" default:"0 0 1 * *"`
	DailySpec   string        `envconfig:"INKWELL_CRON_DAILY_SPEC" default:"0 0 * * *"`
	LockTTL     time.Duration `envconfig:"INKWELL_CRON_LOCK_TTL" default:"1h"`
	BatchLimit  int           `envconfig:"INKWELL_CRON_BATCH_LIMIT" default:"500"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"INKWELL_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"INKWELL_AUTO_MIGRATE" default:"false"`
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
