package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "GYMMEAT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "GYMMEAT_DB_DSN"
	EnvDBHost = "GYMMEAT_DB_HOST"
	EnvDBUser = "GYMMEAT_DB_USER"
	EnvDBName = "GYMMEAT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
