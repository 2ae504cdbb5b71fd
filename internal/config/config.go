package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/bassista/trackctl/internal/logger"
)

// BackendConfig points the client at the appliance REST backend.
type BackendConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

// CacheConfig holds the TTLs of the shared resource caches.
type CacheConfig struct {
	ServiceTTL time.Duration `mapstructure:"service_ttl" validate:"gt=0"`
	SystemTTL  time.Duration `mapstructure:"system_ttl" validate:"gt=0"`
}

// WorkflowConfig tunes the save workflow.
type WorkflowConfig struct {
	// OutcomeRevert is how long a saved/deployed outcome stays visible
	// before the workflow reverts to idle.
	OutcomeRevert time.Duration `mapstructure:"outcome_revert" validate:"gt=0"`
}

// ScopeConfig holds scope resolver settings.
type ScopeConfig struct {
	// StateFile persists the selected config group across invocations.
	StateFile string `mapstructure:"state_file" validate:"required"`
}

// GatewayConfig configures the local console gateway server.
type GatewayConfig struct {
	Port            int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutDownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  string        `mapstructure:"allowed_origins"`
	GinMode         string        `mapstructure:"gin_mode" validate:"oneof=debug release test"`
}

// MiscConfig holds settings that do not belong to a specific component.
type MiscConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// Config is the full client configuration.
type Config struct {
	Backend  BackendConfig  `mapstructure:"backend"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Scope    ScopeConfig    `mapstructure:"scope"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Misc     MiscConfig     `mapstructure:"misc"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.request_timeout", 15*time.Second)
	v.SetDefault("cache.service_ttl", 5*time.Second)
	v.SetDefault("cache.system_ttl", 30*time.Second)
	v.SetDefault("workflow.outcome_revert", 5*time.Second)
	v.SetDefault("scope.state_file", "./trackctl-state.json")
	v.SetDefault("gateway.port", 8090)
	v.SetDefault("gateway.read_timeout", 10*time.Second)
	v.SetDefault("gateway.write_timeout", 30*time.Second)
	v.SetDefault("gateway.idle_timeout", 60*time.Second)
	v.SetDefault("gateway.request_timeout", 30*time.Second)
	v.SetDefault("gateway.shutdown_timeout", 10*time.Second)
	v.SetDefault("gateway.allowed_origins", "*")
	v.SetDefault("gateway.gin_mode", "release")
	v.SetDefault("misc.log_level", "info")
}

// LoadConfig reads config.yaml from confPath (plus .env and TRACKCTL_* env
// overrides) and returns the validated configuration. A missing config file
// is not an error; defaults and env vars apply.
func LoadConfig(confPath string) (*Config, error) {
	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(confPath)

	setDefaults(v)

	// Environment variables automatically override config file values,
	// e.g. TRACKCTL_BACKEND_BASE_URL overrides backend.base_url.
	v.AutomaticEnv()
	v.SetEnvPrefix("TRACKCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.WithComponent("config").Info("no config file found, using defaults and env vars")
		} else {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
