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
	DB           DBConfig
	Redis        RedisConfig
	Gate         GateConfig
	Orders       OrdersConfig
	Notify       NotifyConfig
	Sweeper      SweeperConfig
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
	if err := cfg.Gate.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SCANPAY_APP_ENV" required:"true"`
	Port         string `envconfig:"SCANPAY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SCANPAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SCANPAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SCANPAY_DB_DSN"`
	Driver string `envconfig:"SCANPAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SCANPAY_DB_HOST"`
	LegacyPort     int    `envconfig:"SCANPAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SCANPAY_DB_USER"`
	LegacyPassword string `envconfig:"SCANPAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"SCANPAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"SCANPAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SCANPAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SCANPAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SCANPAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SCANPAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SCANPAY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SCANPAY_REDIS_ADDR"`
	Password     string        `envconfig:"SCANPAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"SCANPAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SCANPAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SCANPAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SCANPAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SCANPAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SCANPAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// GateConfig governs the signed-request ingress checks.
type GateConfig struct {
	TimestampWindow time.Duration `envconfig:"SCANPAY_GATE_TIMESTAMP_WINDOW" default:"5m"`
	NonceTTL        time.Duration `envconfig:"SCANPAY_GATE_NONCE_TTL" default:"10m"`
}

// validate keeps the nonce TTL strictly larger than the timestamp window;
// otherwise a captured request could be replayed after its nonce expired but
// while its timestamp was still fresh.
func (g GateConfig) validate() error {
	if g.NonceTTL <= g.TimestampWindow {
		return fmt.Errorf("%s must exceed %s", EnvGateNonceTTL, EnvGateTimestampWindow)
	}
	return nil
}

type OrdersConfig struct {
	TTL              time.Duration `envconfig:"SCANPAY_ORDER_TTL" default:"30m"`
	AllocateAttempts int           `envconfig:"SCANPAY_ORDER_ALLOCATE_ATTEMPTS" default:"3"`
}

type NotifyConfig struct {
	Timeout time.Duration `envconfig:"SCANPAY_NOTIFY_TIMEOUT" default:"10s"`
}

type SweeperConfig struct {
	Interval  time.Duration `envconfig:"SCANPAY_SWEEP_INTERVAL" default:"1m"`
	BatchSize int           `envconfig:"SCANPAY_SWEEP_BATCH_SIZE" default:"500"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SCANPAY_AUTO_MIGRATE" default:"false"`
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
