package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                = "STOREFRONT_APP_ENV"
	EnvPort                  = "STOREFRONT_APP_PORT"
	EnvLogLevel              = "STOREFRONT_LOG_LEVEL"
	EnvAPIBaseURL            = "STOREFRONT_API_BASE_URL"
	EnvAPITimeout            = "STOREFRONT_API_TIMEOUT"
	EnvStorageDriver         = "STOREFRONT_STORAGE_DRIVER"
	EnvStorageNamespace      = "STOREFRONT_STORAGE_NAMESPACE"
	EnvRedisURL              = "STOREFRONT_REDIS_URL"
	EnvRedisAddr             = "STOREFRONT_REDIS_ADDR"
	EnvDBDSN                 = "STOREFRONT_DB_DSN"
	EnvDBHost                = "STOREFRONT_DB_HOST"
	EnvDBUser                = "STOREFRONT_DB_USER"
	EnvDBName                = "STOREFRONT_DB_NAME"
	EnvFreeShippingThreshold = "STOREFRONT_FREE_SHIPPING_THRESHOLD"
	EnvShippingFee           = "STOREFRONT_SHIPPING_FEE"
	EnvTaxRate               = "STOREFRONT_TAX_RATE"
	EnvMaxSessions           = "STOREFRONT_MAX_SESSIONS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
