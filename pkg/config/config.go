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
	ProductLookup ProductLookupConfig
	Cart          CartConfig
	Sendgrid      SendgridConfig
	Mail          MailConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"NUTRICART_APP_ENV" required:"true"`
	Port         string `envconfig:"NUTRICART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NUTRICART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NUTRICART_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"NUTRICART_CORS_ALLOWED_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"NUTRICART_DB_DSN"`
	Driver     string `envconfig:"NUTRICART_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"NUTRICART_SQLITE_PATH" default:"nutricart.db"`

	LegacyHost     string `envconfig:"NUTRICART_DB_HOST"`
	LegacyPort     int    `envconfig:"NUTRICART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NUTRICART_DB_USER"`
	LegacyPassword string `envconfig:"NUTRICART_DB_PASSWORD"`
	LegacyName     string `envconfig:"NUTRICART_DB_NAME"`
	LegacySSLMode  string `envconfig:"NUTRICART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NUTRICART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NUTRICART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NUTRICART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NUTRICART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NUTRICART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NUTRICART_REDIS_ADDR"`
	Password     string        `envconfig:"NUTRICART_REDIS_PASSWORD"`
	DB           int           `envconfig:"NUTRICART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NUTRICART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NUTRICART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NUTRICART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NUTRICART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NUTRICART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"NUTRICART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"NUTRICART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"NUTRICART_JWT_EXPIRATION_MINUTES" default:"30"`
}

// AccessTTL returns the access token lifetime.
func (j JWTConfig) AccessTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NUTRICART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NUTRICART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NUTRICART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NUTRICART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NUTRICART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"NUTRICART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"NUTRICART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"NUTRICART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"NUTRICART_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"NUTRICART_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"NUTRICART_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"NUTRICART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"NUTRICART_AUTO_MIGRATE" default:"false"`
}

type ProductLookupConfig struct {
	BaseURL          string        `envconfig:"NUTRICART_PRODUCT_LOOKUP_BASE_URL" default:"https://world.openfoodfacts.net"`
	Timeout          time.Duration `envconfig:"NUTRICART_PRODUCT_LOOKUP_TIMEOUT" default:"5s"`
	UserAgent        string        `envconfig:"NUTRICART_PRODUCT_LOOKUP_USER_AGENT" default:"NutriCart/1.0"`
	CacheTTL         time.Duration `envconfig:"NUTRICART_PRODUCT_CACHE_TTL" default:"24h"`
	BreakerFailures  uint32        `envconfig:"NUTRICART_PRODUCT_BREAKER_FAILURES" default:"5"`
	BreakerOpenDelay time.Duration `envconfig:"NUTRICART_PRODUCT_BREAKER_OPEN_DELAY" default:"30s"`
}

type CartConfig struct {
	DefaultSavedName string `envconfig:"NUTRICART_CART_DEFAULT_SAVED_NAME" default:"My Cart"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"NUTRICART_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"NUTRICART_SENDGRID_FROM_EMAIL"`
	FromName    string `envconfig:"NUTRICART_SENDGRID_FROM_NAME" default:"NutriCart"`
}

type MailConfig struct {
	QueueSize   int           `envconfig:"NUTRICART_MAIL_QUEUE_SIZE" default:"100"`
	Workers     int           `envconfig:"NUTRICART_MAIL_WORKERS" default:"2"`
	SendTimeout time.Duration `envconfig:"NUTRICART_MAIL_SEND_TIMEOUT" default:"10s"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"NUTRICART_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"NUTRICART_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	CartEventsTopic string        `envconfig:"NUTRICART_PUBSUB_CART_EVENTS_TOPIC"`
	PublishTimeout  time.Duration `envconfig:"NUTRICART_PUBSUB_PUBLISH_TIMEOUT" default:"2s"`
}

// Enabled reports whether cart events should be fanned out to Pub/Sub.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.CartEventsTopic) != ""
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite || db.DSN != "" {
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
