package config

// EnvPrefix is passed to envconfig.Process; individual fields carry the full
// variable names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "AURELIA_APP_ENV"
	EnvDBDSN      = "AURELIA_DB_DSN"
	EnvDBHost     = "AURELIA_DB_HOST"
	EnvDBUser     = "AURELIA_DB_USER"
	EnvDBName     = "AURELIA_DB_NAME"
	EnvDBPassword = "AURELIA_DB_PASSWORD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
