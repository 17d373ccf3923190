package config

const (
	EnvPrefix = "dealerhub"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "DEALERHUB_APP_ENV"
	EnvPort     = "DEALERHUB_APP_PORT"
	EnvDBDSN    = "DEALERHUB_DB_DSN"
	EnvDBHost   = "DEALERHUB_DB_HOST"
	EnvDBUser   = "DEALERHUB_DB_USER"
	EnvDBName   = "DEALERHUB_DB_NAME"
	EnvRedisURL = "DEALERHUB_REDIS_URL"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
