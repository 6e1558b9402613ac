package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Blob         BlobConfig
	Intents      IntentsConfig
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
	Env          string `envconfig:"CELEBRA_APP_ENV" required:"true"`
	Port         string `envconfig:"CELEBRA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CELEBRA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CELEBRA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CELEBRA_DB_DSN"`
	Driver string `envconfig:"CELEBRA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CELEBRA_DB_HOST"`
	Port     int    `envconfig:"CELEBRA_DB_PORT" default:"5432"`
	User     string `envconfig:"CELEBRA_DB_USER"`
	Password string `envconfig:"CELEBRA_DB_PASSWORD"`
	Name     string `envconfig:"CELEBRA_DB_NAME"`
	SSLMode  string `envconfig:"CELEBRA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CELEBRA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CELEBRA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CELEBRA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CELEBRA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CELEBRA_REDIS_URL" required:"true"`
	Password     string        `envconfig:"CELEBRA_REDIS_PASSWORD"`
	DB           int           `envconfig:"CELEBRA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CELEBRA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CELEBRA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CELEBRA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CELEBRA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CELEBRA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CELEBRA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CELEBRA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CELEBRA_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CELEBRA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CELEBRA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CELEBRA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CELEBRA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CELEBRA_ARGON_KEY_LEN" default:"32"`
}

type BlobConfig struct {
	Endpoint          string        `envconfig:"CELEBRA_BLOB_ENDPOINT" required:"true"`
	Bucket            string        `envconfig:"CELEBRA_BLOB_BUCKET" required:"true"`
	PublicBaseURL     string        `envconfig:"CELEBRA_BLOB_PUBLIC_BASE_URL"`
	SigningSecret     string        `envconfig:"CELEBRA_BLOB_SIGNING_SECRET" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"CELEBRA_BLOB_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"CELEBRA_BLOB_DOWNLOAD_URL_EXPIRY" default:"1h"`
	MaxUploadMB       int           `envconfig:"CELEBRA_BLOB_MAX_UPLOAD_MB" default:"10"`
}

type IntentsConfig struct {
	TTL time.Duration `envconfig:"CELEBRA_INTENTS_TTL" default:"1h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CELEBRA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	pieces := map[string]string{
		"CELEBRA_DB_HOST": db.Host,
		"CELEBRA_DB_USER": db.User,
		"CELEBRA_DB_NAME": db.Name,
	}
	for _, key := range []string{"CELEBRA_DB_HOST", "CELEBRA_DB_USER", "CELEBRA_DB_NAME"} {
		if pieces[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either CELEBRA_DB_DSN or %s are required", strings.Join(missing, ", "))
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
