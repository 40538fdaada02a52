package config

const (
	EnvPrefix = "SETTISFY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "SETTISFY_APP_ENV"
	EnvPort      = "SETTISFY_APP_PORT"
	EnvDBDSN     = "SETTISFY_DB_DSN"
	EnvDBHost    = "SETTISFY_DB_HOST"
	EnvDBUser    = "SETTISFY_DB_USER"
	EnvDBName    = "SETTISFY_DB_NAME"
	EnvRedisURL  = "SETTISFY_REDIS_URL"
	EnvJWTSecret = "SETTISFY_JWT_SECRET"
	EnvJWTIssuer = "SETTISFY_JWT_ISSUER"
	EnvJWTExpMin = "SETTISFY_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "SETTISFY_GCP_PROJECT_ID"
	EnvGCSBucket    = "SETTISFY_GCS_BUCKET_NAME"

	EnvPubSubBookingTopic          = "SETTISFY_PUBSUB_BOOKING_TOPIC"
	EnvPubSubAnalyticsSubscription = "SETTISFY_PUBSUB_ANALYTICS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
