package config

// EnvPrefix namespaces every POSVougher environment variable.
const EnvPrefix = "POSVOUGHER"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "POSVOUGHER_APP_ENV"
	EnvPort     = "POSVOUGHER_APP_PORT"
	EnvDBDSN    = "POSVOUGHER_DB_DSN"
	EnvDBHost   = "POSVOUGHER_DB_HOST"
	EnvDBUser   = "POSVOUGHER_DB_USER"
	EnvDBName   = "POSVOUGHER_DB_NAME"
	EnvRedisURL = "POSVOUGHER_REDIS_URL"

	EnvJWTSecret              = "POSVOUGHER_JWT_SECRET"
	EnvJWTIssuer              = "POSVOUGHER_JWT_ISSUER"
	EnvJWTExpMins             = "POSVOUGHER_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "POSVOUGHER_REFRESH_TOKEN_TTL_MINUTES"

	EnvMidtransServerKey = "POSVOUGHER_MIDTRANS_SERVER_KEY"
	EnvMidtransClientKey = "POSVOUGHER_MIDTRANS_CLIENT_KEY"
	EnvMidtransEnv       = "POSVOUGHER_MIDTRANS_ENV"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
