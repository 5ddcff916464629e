package config

// EnvPrefix is passed to envconfig; variable names are fully spelled out in
// struct tags, so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "LOCALBASKET_DB_DSN"
	EnvDBHost = "LOCALBASKET_DB_HOST"
	EnvDBUser = "LOCALBASKET_DB_USER"
	EnvDBName = "LOCALBASKET_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
