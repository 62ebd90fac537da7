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
	Midtrans      MidtransConfig
	Cron          CronConfig
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
	Env          string `envconfig:"POSVOUGHER_APP_ENV" required:"true"`
	Port         string `envconfig:"POSVOUGHER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"POSVOUGHER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"POSVOUGHER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"POSVOUGHER_DB_DSN"`
	Driver string `envconfig:"POSVOUGHER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"POSVOUGHER_DB_HOST"`
	LegacyPort     int    `envconfig:"POSVOUGHER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"POSVOUGHER_DB_USER"`
	LegacyPassword string `envconfig:"POSVOUGHER_DB_PASSWORD"`
	LegacyName     string `envconfig:"POSVOUGHER_DB_NAME"`
	LegacySSLMode  string `envconfig:"POSVOUGHER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"POSVOUGHER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"POSVOUGHER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"POSVOUGHER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"POSVOUGHER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"POSVOUGHER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"POSVOUGHER_REDIS_ADDR"`
	Password     string        `envconfig:"POSVOUGHER_REDIS_PASSWORD"`
	DB           int           `envconfig:"POSVOUGHER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POSVOUGHER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POSVOUGHER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POSVOUGHER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POSVOUGHER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POSVOUGHER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"POSVOUGHER_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"POSVOUGHER_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"POSVOUGHER_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"POSVOUGHER_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"POSVOUGHER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"POSVOUGHER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"POSVOUGHER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"POSVOUGHER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"POSVOUGHER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"POSVOUGHER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"POSVOUGHER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"POSVOUGHER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"POSVOUGHER_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"POSVOUGHER_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"POSVOUGHER_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"POSVOUGHER_AUTO_MIGRATE" default:"false"`
}

// MidtransConfig carries the Snap/Core API credentials and webhook policy.
type MidtransConfig struct {
	ServerKey       string `envconfig:"POSVOUGHER_MIDTRANS_SERVER_KEY" required:"true"`
	ClientKey       string `envconfig:"POSVOUGHER_MIDTRANS_CLIENT_KEY"`
	Env             string `envconfig:"POSVOUGHER_MIDTRANS_ENV" default:"sandbox"`
	SignaturePolicy string `envconfig:"POSVOUGHER_MIDTRANS_SIGNATURE_POLICY" default:"strict"`
}

// Environment returns the normalized Midtrans environment (sandbox/production).
func (m MidtransConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(m.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

// StrictSignature reports whether webhook signature mismatches are fatal.
func (m MidtransConfig) StrictSignature() bool {
	return !strings.EqualFold(strings.TrimSpace(m.SignaturePolicy), "permissive")
}

type CronConfig struct {
	Interval              time.Duration `envconfig:"POSVOUGHER_CRON_INTERVAL" default:"1h"`
	PendingTransactionTTL time.Duration `envconfig:"POSVOUGHER_CRON_PENDING_TRANSACTION_TTL" default:"24h"`
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
