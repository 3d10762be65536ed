package config

// EnvPrefix is empty because every field carries its fully qualified
// ASILI_* name in its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	StoreDriverFile  = "file"
	StoreDriverRedis = "redis"
)

// Environment variable names referenced outside struct tags (tests, docs).
const (
	EnvAppEnv      = "ASILI_APP_ENV"
	EnvPort        = "ASILI_APP_PORT"
	EnvStoreDriver = "ASILI_STORE_DRIVER"
	EnvStoreDir    = "ASILI_STORE_DIR"
	EnvRedisURL    = "ASILI_REDIS_URL"
	EnvAIAPIKey    = "ASILI_AI_API_KEY"
)
