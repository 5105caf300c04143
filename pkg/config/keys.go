package config

// Application environment values recognized by AppConfig.
const (
	AppEnvDev     = "development"
	AppEnvStaging = "staging"
	AppEnvProd    = "production"
)

// Environment variable names, shared with tests and deploy tooling.
const (
	EnvAppEnv   = "IMS_ENV"
	EnvPort     = "IMS_HTTP_PORT"
	EnvLogLevel = "IMS_LOG_LEVEL"

	EnvDBDSN  = "DATABASE_URL"
	EnvDBHost = "IMS_DB_HOST"
	EnvDBUser = "IMS_DB_USER"
	EnvDBName = "IMS_DB_NAME"

	EnvRedisURL = "IMS_REDIS_URL"

	EnvJWTSecret       = "SECRET_KEY"
	EnvJWTAlgorithm    = "ALGORITHM"
	EnvJWTExpMins      = "ACCESS_TOKEN_EXPIRE_MINUTES"
	EnvRefreshTTLDays  = "IMS_REFRESH_TOKEN_TTL_DAYS"
	EnvJWTIssuer       = "IMS_JWT_ISSUER"
	EnvGCPProjectID    = "IMS_GCP_PROJECT_ID"
	EnvBigQueryDataset = "IMS_BIGQUERY_DATASET"
)
