package config

const (
	EnvPrefix = "NUTRICART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "NUTRICART_APP_ENV"
	EnvPort     = "NUTRICART_APP_PORT"
	EnvLogLevel = "NUTRICART_LOG_LEVEL"

	EnvDBDSN  = "NUTRICART_DB_DSN"
	EnvDBHost = "NUTRICART_DB_HOST"
	EnvDBPort = "NUTRICART_DB_PORT"
	EnvDBUser = "NUTRICART_DB_USER"
	EnvDBPass = "NUTRICART_DB_PASSWORD"
	EnvDBName = "NUTRICART_DB_NAME"

	EnvRedisURL = "NUTRICART_REDIS_URL"

	EnvJWTSecret  = "NUTRICART_JWT_SECRET"
	EnvJWTIssuer  = "NUTRICART_JWT_ISSUER"
	EnvJWTExpMins = "NUTRICART_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite = "NUTRICART_USE_SQLITE"

	EnvProductLookupBaseURL = "NUTRICART_PRODUCT_LOOKUP_BASE_URL"
	EnvProductLookupTimeout = "NUTRICART_PRODUCT_LOOKUP_TIMEOUT"

	EnvPubSubCartEventsTopic = "NUTRICART_PUBSUB_CART_EVENTS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
