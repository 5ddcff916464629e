package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App             AppConfig
	DB              DBConfig
	Redis           RedisConfig
	JWT             JWTConfig
	Password        PasswordConfig
	AuthRateLimit   AuthRateLimitConfig
	FeatureFlags    FeatureFlagsConfig
	Geocode         GeocodeConfig
	Nearby          NearbyConfig
	Recommendations RecommendationsConfig
	GCP             GCPConfig
	PubSub          PubSubConfig
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
	Env          string `envconfig:"LOCALBASKET_APP_ENV" required:"true"`
	Port         string `envconfig:"LOCALBASKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LOCALBASKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LOCALBASKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LOCALBASKET_DB_DSN"`
	Driver string `envconfig:"LOCALBASKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LOCALBASKET_DB_HOST"`
	LegacyPort     int    `envconfig:"LOCALBASKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LOCALBASKET_DB_USER"`
	LegacyPassword string `envconfig:"LOCALBASKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"LOCALBASKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"LOCALBASKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LOCALBASKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LOCALBASKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LOCALBASKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LOCALBASKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LOCALBASKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LOCALBASKET_REDIS_ADDR"`
	Password     string        `envconfig:"LOCALBASKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"LOCALBASKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LOCALBASKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LOCALBASKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LOCALBASKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LOCALBASKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LOCALBASKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LOCALBASKET_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LOCALBASKET_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LOCALBASKET_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LOCALBASKET_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LOCALBASKET_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LOCALBASKET_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LOCALBASKET_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LOCALBASKET_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LOCALBASKET_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"LOCALBASKET_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LOCALBASKET_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"LOCALBASKET_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"LOCALBASKET_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"LOCALBASKET_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"LOCALBASKET_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"LOCALBASKET_AUTO_MIGRATE" default:"false"`
}

type GeocodeConfig struct {
	BaseURL   string        `envconfig:"LOCALBASKET_GEOCODE_BASE_URL" default:"https://nominatim.openstreetmap.org"`
	Timeout   time.Duration `envconfig:"LOCALBASKET_GEOCODE_TIMEOUT" default:"5s"`
	UserAgent string        `envconfig:"LOCALBASKET_GEOCODE_USER_AGENT" default:"localbasket-backend"`
}

type NearbyConfig struct {
	DefaultRadiusKm float64       `envconfig:"LOCALBASKET_NEARBY_DEFAULT_RADIUS_KM" default:"10"`
	MaxRadiusKm     float64       `envconfig:"LOCALBASKET_NEARBY_MAX_RADIUS_KM" default:"200"`
	CacheTTL        time.Duration `envconfig:"LOCALBASKET_NEARBY_CACHE_TTL" default:"30s"`
}

type RecommendationsConfig struct {
	BaseURL string        `envconfig:"LOCALBASKET_RECOMMENDATIONS_BASE_URL"`
	Timeout time.Duration `envconfig:"LOCALBASKET_RECOMMENDATIONS_TIMEOUT" default:"5s"`
	Limit   int           `envconfig:"LOCALBASKET_RECOMMENDATIONS_LIMIT" default:"10"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"LOCALBASKET_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"LOCALBASKET_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic     string `envconfig:"LOCALBASKET_PUBSUB_ORDERS_TOPIC" default:"lb-order-events"`
	ComplaintsTopic string `envconfig:"LOCALBASKET_PUBSUB_COMPLAINTS_TOPIC" default:"lb-complaint-events"`
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
