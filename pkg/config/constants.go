package config

const (
	EnvPrefix = "scanpay"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "SCANPAY_APP_ENV"
	EnvPort   = "SCANPAY_APP_PORT"

	EnvDBDSN  = "SCANPAY_DB_DSN"
	EnvDBHost = "SCANPAY_DB_HOST"
	EnvDBUser = "SCANPAY_DB_USER"
	EnvDBName = "SCANPAY_DB_NAME"

	EnvRedisURL = "SCANPAY_REDIS_URL"

	EnvGateTimestampWindow = "SCANPAY_GATE_TIMESTAMP_WINDOW"
	EnvGateNonceTTL        = "SCANPAY_GATE_NONCE_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
