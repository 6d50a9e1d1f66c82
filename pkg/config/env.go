package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "GATEPASS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv = "GATEPASS_APP_ENV"
	EnvPort   = "GATEPASS_APP_PORT"

	EnvDBDSN  = "GATEPASS_DB_DSN"
	EnvDBHost = "GATEPASS_DB_HOST"
	EnvDBUser = "GATEPASS_DB_USER"
	EnvDBName = "GATEPASS_DB_NAME"

	EnvRedisURL = "GATEPASS_REDIS_URL"

	EnvJWTSecret  = "GATEPASS_JWT_SECRET"
	EnvJWTIssuer  = "GATEPASS_JWT_ISSUER"
	EnvJWTExpMins = "GATEPASS_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "GATEPASS_GCP_PROJECT_ID"

	EnvPubSubDomainTopic = "GATEPASS_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub   = "GATEPASS_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
