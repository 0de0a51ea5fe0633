package config

// EnvPrefix is the envconfig prefix shared by every Inkwell process.
const EnvPrefix = "INKWELL"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "INKWELL_APP_ENV"
	EnvPort     = "INKWELL_APP_PORT"
	EnvDBDSN    = "INKWELL_DB_DSN"
	EnvDBHost   = "INKWELL_DB_HOST"
	EnvDBUser   = "INKWELL_DB_USER"
	EnvDBName   = "INKWELL_DB_NAME"
	EnvRedisURL = "INKWELL_REDIS_URL"

	EnvClerkWebhookSecret = "INKWELL_CLERK_WEBHOOK_SECRET"
	EnvClerkJWTPublicKey  = "INKWELL_CLERK_JWT_PUBLIC_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
