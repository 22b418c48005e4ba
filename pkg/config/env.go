package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "MARKET"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
	DBDriverMongo    = "mongo"
)

const (
	MediaBackendGCS   = "gcs"
	MediaBackendS3    = "s3"
	MediaBackendLocal = "local"
)

const (
	EnvAppEnv     = "MARKET_APP_ENV"
	EnvPort       = "MARKET_APP_PORT"
	EnvLogLevel   = "MARKET_LOG_LEVEL"
	EnvTrustProxy = "MARKET_TRUST_PROXY"

	EnvDBDSN    = "MARKET_DB_DSN"
	EnvDBDriver = "MARKET_DB_DRIVER"
	EnvDBHost   = "MARKET_DB_HOST"
	EnvDBUser   = "MARKET_DB_USER"
	EnvDBName   = "MARKET_DB_NAME"

	EnvMongoURI = "MARKET_MONGO_URI"

	EnvRedisURL = "MARKET_REDIS_URL"

	EnvAdminPassword     = "MARKET_ADMIN_PASSWORD"
	EnvAdminPasswordHash = "MARKET_ADMIN_PASSWORD_HASH"

	EnvMediaBackend = "MARKET_MEDIA_BACKEND"
	EnvMediaFolder  = "MARKET_MEDIA_FOLDER"
	EnvMaxUploadMB  = "MARKET_MAX_UPLOAD_MB"

	EnvGCSBucket = "MARKET_GCS_BUCKET_NAME"
	EnvS3Bucket  = "MARKET_S3_BUCKET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
