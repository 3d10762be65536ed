package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Store         StoreConfig
	Redis         RedisConfig
	AI            AIConfig
	Assistant     AssistantConfig
	Notifications NotificationsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ASILI_APP_ENV" required:"true"`
	Port         string `envconfig:"ASILI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ASILI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ASILI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig selects the key-value store driver that backs per-session
// state. The file driver is the default and needs no external service.
type StoreConfig struct {
	Driver string `envconfig:"ASILI_STORE_DRIVER" default:"file"`
	Dir    string `envconfig:"ASILI_STORE_DIR" default:"./data"`
}

func (s StoreConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StoreDriverFile, StoreDriverRedis:
		return nil
	}
	return fmt.Errorf("unsupported store driver %q", s.Driver)
}

// IsRedis reports whether the redis driver was selected.
func (s StoreConfig) IsRedis() bool {
	return strings.EqualFold(s.Driver, StoreDriverRedis)
}

type RedisConfig struct {
	URL          string        `envconfig:"ASILI_REDIS_URL"`
	Address      string        `envconfig:"ASILI_REDIS_ADDR"`
	Password     string        `envconfig:"ASILI_REDIS_PASSWORD"`
	DB           int           `envconfig:"ASILI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ASILI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ASILI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ASILI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ASILI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ASILI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type AIConfig struct {
	APIKey    string        `envconfig:"ASILI_AI_API_KEY"`
	BaseURL   string        `envconfig:"ASILI_AI_BASE_URL"`
	ChatModel string        `envconfig:"ASILI_AI_CHAT_MODEL" default:"gpt-4o-mini"`
	MaxTokens int           `envconfig:"ASILI_AI_MAX_TOKENS" default:"800"`
	Timeout   time.Duration `envconfig:"ASILI_AI_TIMEOUT" default:"30s"`
}

type AssistantConfig struct {
	MaxRequests    int `envconfig:"ASILI_ASSISTANT_MAX_REQUESTS" default:"50"`
	RetryThreshold int `envconfig:"ASILI_ASSISTANT_RETRY_THRESHOLD" default:"3"`
	HistoryWindow  int `envconfig:"ASILI_ASSISTANT_HISTORY_WINDOW" default:"4"`
}

type NotificationsConfig struct {
	// Retention caps the stored feed length per session; 0 disables the cap.
	Retention int `envconfig:"ASILI_NOTIFICATIONS_RETENTION" default:"100"`
}
