package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SMARTSTOCK"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv     = "SMARTSTOCK_APP_ENV"
	EnvPort       = "SMARTSTOCK_APP_PORT"
	EnvDBDSN      = "SMARTSTOCK_DB_DSN"
	EnvDBHost     = "SMARTSTOCK_DB_HOST"
	EnvDBUser     = "SMARTSTOCK_DB_USER"
	EnvDBName     = "SMARTSTOCK_DB_NAME"
	EnvRedisURL   = "SMARTSTOCK_REDIS_URL"
	EnvJWTSecret  = "SMARTSTOCK_JWT_SECRET"
	EnvJWTIssuer  = "SMARTSTOCK_JWT_ISSUER"
	EnvJWTExpMins = "SMARTSTOCK_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	CORS          CORSConfig
	Ledger        LedgerConfig
	Cron          CronConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"SMARTSTOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"SMARTSTOCK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SMARTSTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SMARTSTOCK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SMARTSTOCK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SMARTSTOCK_DB_DSN"`
	Driver string `envconfig:"SMARTSTOCK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SMARTSTOCK_DB_HOST"`
	LegacyPort     int    `envconfig:"SMARTSTOCK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SMARTSTOCK_DB_USER"`
	LegacyPassword string `envconfig:"SMARTSTOCK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SMARTSTOCK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SMARTSTOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SMARTSTOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SMARTSTOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SMARTSTOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SMARTSTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SMARTSTOCK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SMARTSTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"SMARTSTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SMARTSTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SMARTSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SMARTSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SMARTSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SMARTSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SMARTSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SMARTSTOCK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SMARTSTOCK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SMARTSTOCK_JWT_EXPIRATION_MINUTES" required:"true"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SMARTSTOCK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SMARTSTOCK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SMARTSTOCK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SMARTSTOCK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SMARTSTOCK_ARGON_KEY_LEN" default:"32"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SMARTSTOCK_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

// LedgerConfig carries the tunables of the overdue calculation. Defaults match
// the house rules: a 3-day grace window, 50 per day afterwards, and a 7-day
// due-soon horizon.
type LedgerConfig struct {
	GraceDays    int `envconfig:"SMARTSTOCK_LEDGER_GRACE_DAYS" default:"3"`
	DailyLateFee int `envconfig:"SMARTSTOCK_LEDGER_DAILY_LATE_FEE" default:"50"`
	DueSoonDays  int `envconfig:"SMARTSTOCK_LEDGER_DUE_SOON_DAYS" default:"7"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SMARTSTOCK_CRON_INTERVAL" default:"24h"`
}

// AuthRateLimitConfig throttles the unauthenticated auth endpoints. A zero
// window disables the corresponding limiter.
type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SMARTSTOCK_RL_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit       int           `envconfig:"SMARTSTOCK_RL_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit    int           `envconfig:"SMARTSTOCK_RL_LOGIN_EMAIL_LIMIT" default:"5"`
	RegisterWindow     time.Duration `envconfig:"SMARTSTOCK_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"SMARTSTOCK_RL_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"SMARTSTOCK_RL_REGISTER_EMAIL_LIMIT" default:"3"`
}

type FeatureFlagsConfig struct {
	UseSQLite         bool `envconfig:"SMARTSTOCK_USE_SQLITE" default:"false"`
	AutoMigrate       bool `envconfig:"SMARTSTOCK_AUTO_MIGRATE" default:"false"`
	AllowRegistration bool `envconfig:"SMARTSTOCK_ALLOW_REGISTRATION" default:"false"`
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
