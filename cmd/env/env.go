package env

const (
	// Prefix is the ENV variable prefix for all kantorfx settings
	Prefix = "KANTORFX"

	// DBURLSuffix is the ENV variable suffix for the Postgres DSN
	DBURLSuffix = "_DB_URL"
)
