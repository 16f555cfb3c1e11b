package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Kakao    KakaoConfig    `yaml:"kakao" mapstructure:"kakao"`
	Naver    NaverConfig    `yaml:"naver" mapstructure:"naver"`
	Semas    SemasConfig    `yaml:"semas" mapstructure:"semas"`
	Advisor  AdvisorConfig  `yaml:"advisor" mapstructure:"advisor"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// KakaoConfig holds Kakao Local REST API settings.
type KakaoConfig struct {
	RESTKey string `yaml:"rest_key" mapstructure:"rest_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// NaverConfig holds Naver open API credentials.
type NaverConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
}

// SemasConfig holds SEMAS store-directory open API settings.
type SemasConfig struct {
	ServiceKey string `yaml:"service_key" mapstructure:"service_key"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
}

// AdvisorConfig holds settings for the advisory text generator. An empty
// key disables advice generation without affecting analysis.
type AdvisorConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AnalysisConfig tunes the aggregation engine.
type AnalysisConfig struct {
	// AdapterTimeoutSecs bounds each provider call independently.
	AdapterTimeoutSecs int `yaml:"adapter_timeout_secs" mapstructure:"adapter_timeout_secs"`

	// RetryAttempts is the total attempts per adapter call (1 = no retry).
	RetryAttempts int `yaml:"retry_attempts" mapstructure:"retry_attempts"`

	// SourceWeights maps source IDs to estimator weights; must sum to 1.0.
	SourceWeights map[string]float64 `yaml:"source_weights" mapstructure:"source_weights"`

	// MaxRadiusMeters caps the request radius (Kakao rejects > 20000).
	MaxRadiusMeters int `yaml:"max_radius_meters" mapstructure:"max_radius_meters"`

	// SampleCap bounds sample listings kept per category bucket.
	SampleCap int `yaml:"sample_cap" mapstructure:"sample_cap"`

	// CategoryFile optionally extends the built-in category table.
	CategoryFile string `yaml:"category_file" mapstructure:"category_file"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config file, and environment.
func Load() (*Config, error) {
	// Pick up a local .env before viper reads the environment; absence is
	// fine.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BESTMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("kakao.base_url", "https://dapi.kakao.com")
	v.SetDefault("naver.base_url", "https://openapi.naver.com")
	v.SetDefault("semas.base_url", "https://apis.data.go.kr/B553077/api/open/sdsc2")
	v.SetDefault("advisor.model", "claude-haiku-4-5-20251001")
	v.SetDefault("advisor.max_tokens", 1024)
	v.SetDefault("analysis.adapter_timeout_secs", 3)
	v.SetDefault("analysis.retry_attempts", 2)
	v.SetDefault("analysis.max_radius_meters", 20000)
	v.SetDefault("analysis.sample_cap", 30)
	v.SetDefault("analysis.source_weights", map[string]float64{
		"semas_store":    0.40,
		"kakao_keyword":  0.25,
		"kakao_category": 0.20,
		"naver_local":    0.15,
	})
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for a given run mode ("analyze" or
// "serve"). Provider credentials are required in both modes; the advisor
// key stays optional because advice generation is best-effort.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "analyze", "serve":
		if c.Kakao.RESTKey == "" {
			problems = append(problems, "kakao.rest_key is required")
		}
		if c.Naver.ClientID == "" || c.Naver.ClientSecret == "" {
			problems = append(problems, "naver.client_id and naver.client_secret are required")
		}
		if c.Semas.ServiceKey == "" {
			problems = append(problems, "semas.service_key is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if mode == "serve" && c.Server.Port <= 0 {
		problems = append(problems, "server.port must be > 0")
	}

	if c.Analysis.AdapterTimeoutSecs < 1 || c.Analysis.AdapterTimeoutSecs > 30 {
		problems = append(problems, "analysis.adapter_timeout_secs must be between 1 and 30")
	}
	if c.Analysis.RetryAttempts < 1 || c.Analysis.RetryAttempts > 5 {
		problems = append(problems, "analysis.retry_attempts must be between 1 and 5")
	}
	if c.Analysis.MaxRadiusMeters <= 0 {
		problems = append(problems, "analysis.max_radius_meters must be > 0")
	}
	if c.Analysis.SampleCap < 1 {
		problems = append(problems, "analysis.sample_cap must be >= 1")
	}

	if len(c.Analysis.SourceWeights) > 0 {
		var sum float64
		for _, w := range c.Analysis.SourceWeights {
			if w < 0 {
				problems = append(problems, "analysis.source_weights values must be >= 0")
				break
			}
			sum += w
		}
		if sum < 0.99 || sum > 1.01 {
			problems = append(problems, "analysis.source_weights must sum to 1.0")
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
