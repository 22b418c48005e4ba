package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Admin   AdminConfig
	CORS    CORSConfig
	Media   MediaConfig
	GCP     GCPConfig
	GCS     GCSConfig
	S3      S3Config
	Local   LocalStorageConfig
	Metrics MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.DB.IsMongo() && cfg.Mongo.URI == "" {
		return nil, fmt.Errorf("%s is required when %s=%s", EnvMongoURI, EnvDBDriver, DBDriverMongo)
	}
	if cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "" {
		return nil, fmt.Errorf("either %s or %s is required", EnvAdminPassword, EnvAdminPasswordHash)
	}
	if err := cfg.Media.validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string        `envconfig:"MARKET_APP_ENV" required:"true"`
	Port            string        `envconfig:"MARKET_APP_PORT" default:"5000"`
	LogLevel        string        `envconfig:"MARKET_LOG_LEVEL" default:"info"`
	LogWarnStack    bool          `envconfig:"MARKET_LOG_WARN_STACK" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"MARKET_SHUTDOWN_TIMEOUT" default:"15s"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool `envconfig:"MARKET_TRUST_PROXY" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN         string `envconfig:"MARKET_DB_DSN"`
	Driver      string `envconfig:"MARKET_DB_DRIVER" default:"postgres"`
	AutoMigrate bool   `envconfig:"MARKET_AUTO_MIGRATE" default:"false"`

	LegacyHost     string `envconfig:"MARKET_DB_HOST"`
	LegacyPort     int    `envconfig:"MARKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MARKET_DB_USER"`
	LegacyPassword string `envconfig:"MARKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"MARKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"MARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// NormalizedDriver returns the lower-cased driver name, defaulting to postgres.
func (db DBConfig) NormalizedDriver() string {
	driver := strings.ToLower(strings.TrimSpace(db.Driver))
	if driver == "" {
		return DBDriverPostgres
	}
	return driver
}

// IsMongo reports whether documents are persisted in MongoDB instead of SQL.
func (db DBConfig) IsMongo() bool {
	return db.NormalizedDriver() == DBDriverMongo
}

type MongoConfig struct {
	URI            string        `envconfig:"MARKET_MONGO_URI"`
	Database       string        `envconfig:"MARKET_MONGO_DATABASE" default:"futa_market"`
	ConnectTimeout time.Duration `envconfig:"MARKET_MONGO_CONNECT_TIMEOUT" default:"10s"`
	MaxPoolSize    uint64        `envconfig:"MARKET_MONGO_MAX_POOL_SIZE" default:"10"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MARKET_REDIS_URL"`
	Address      string        `envconfig:"MARKET_REDIS_ADDR"`
	Password     string        `envconfig:"MARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// AdminConfig holds the shared admin secret. PasswordHash, an Argon2id hash,
// takes precedence over the plain Password.
type AdminConfig struct {
	Password      string        `envconfig:"MARKET_ADMIN_PASSWORD"`
	PasswordHash  string        `envconfig:"MARKET_ADMIN_PASSWORD_HASH"`
	FailureLimit  int           `envconfig:"MARKET_ADMIN_FAILURE_LIMIT" default:"10"`
	FailureWindow time.Duration `envconfig:"MARKET_ADMIN_FAILURE_WINDOW" default:"15m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MARKET_CORS_ALLOWED_ORIGINS" default:"*"`
}

type MediaConfig struct {
	Backend     string `envconfig:"MARKET_MEDIA_BACKEND" default:"local"`
	Folder      string `envconfig:"MARKET_MEDIA_FOLDER" default:"futa-market"`
	MaxUploadMB int    `envconfig:"MARKET_MAX_UPLOAD_MB" default:"50"`
}

// MaxUploadBytes converts the configured request cap to bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 50 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

// NormalizedBackend returns the lower-cased backend name, defaulting to local.
func (m MediaConfig) NormalizedBackend() string {
	backend := strings.ToLower(strings.TrimSpace(m.Backend))
	if backend == "" {
		return MediaBackendLocal
	}
	return backend
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MARKET_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MARKET_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MARKET_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName    string `envconfig:"MARKET_GCS_BUCKET_NAME"`
	PublicBaseURL string `envconfig:"MARKET_GCS_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
}

type S3Config struct {
	Bucket    string `envconfig:"MARKET_S3_BUCKET"`
	Region    string `envconfig:"MARKET_S3_REGION" default:"us-east-1"`
	AccessKey string `envconfig:"MARKET_S3_KEY"`
	SecretKey string `envconfig:"MARKET_S3_SECRET"`
	Endpoint  string `envconfig:"MARKET_S3_ENDPOINT"`
	PublicURL string `envconfig:"MARKET_S3_URL"`
}

type LocalStorageConfig struct {
	Root    string `envconfig:"MARKET_STORAGE_LOCAL_ROOT" default:"storage"`
	BaseURL string `envconfig:"MARKET_STORAGE_URL" default:"http://localhost:5000/media"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"MARKET_METRICS_ENABLED" default:"true"`
}

func (m MediaConfig) validate(cfg Config) error {
	switch m.NormalizedBackend() {
	case MediaBackendLocal:
		return nil
	case MediaBackendGCS:
		if cfg.GCS.BucketName == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvGCSBucket, EnvMediaBackend, MediaBackendGCS)
		}
		return nil
	case MediaBackendS3:
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvS3Bucket, EnvMediaBackend, MediaBackendS3)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvMediaBackend, m.Backend)
	}
}

func (db *DBConfig) ensureDSN() error {
	switch db.NormalizedDriver() {
	case DBDriverMongo:
		return nil
	case DBDriverSQLite:
		if db.DSN == "" {
			db.DSN = "file:market.db?cache=shared"
		}
		return nil
	case DBDriverPostgres:
	default:
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}

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
