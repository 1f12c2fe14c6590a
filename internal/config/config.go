package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mediareach/press-cli/internal/distribute"
	"github.com/mediareach/press-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig           `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig       `yaml:"anthropic" mapstructure:"anthropic"`
	NewsAPI   NewsAPIConfig         `yaml:"newsapi" mapstructure:"newsapi"`
	Search    SearchConfig          `yaml:"search" mapstructure:"search"`
	Resolver  ResolverConfig        `yaml:"resolver" mapstructure:"resolver"`
	Discovery DiscoveryConfig       `yaml:"discovery" mapstructure:"discovery"`
	SMTP      distribute.SMTPConfig `yaml:"smtp" mapstructure:"smtp"`
	Twitter   TwitterConfig         `yaml:"twitter" mapstructure:"twitter"`
	LinkedIn  LinkedInConfig        `yaml:"linkedin" mapstructure:"linkedin"`
	Facebook  FacebookConfig        `yaml:"facebook" mapstructure:"facebook"`
	Server    ServerConfig          `yaml:"server" mapstructure:"server"`
	Log       LogConfig             `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the archive backends. Locator picks the primary,
// FallbackLocator the local fallback; either may be empty.
type StoreConfig struct {
	Locator         string            `yaml:"locator" mapstructure:"locator"`
	FallbackLocator string            `yaml:"fallback_locator" mapstructure:"fallback_locator"`
	Pool            *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// AnthropicConfig holds the text-generation API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// NewsAPIConfig holds the news search settings. An empty key disables the
// strategy and discovery starts from web search.
type NewsAPIConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	Language string `yaml:"language" mapstructure:"language"`
	PageSize int    `yaml:"page_size" mapstructure:"page_size"`
}

// SearchConfig configures the web-search client and courtesy delays.
type SearchConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	DelaySecs int    `yaml:"delay_secs" mapstructure:"delay_secs"`
}

// ResolverConfig configures the email resolver's refinement loop.
type ResolverConfig struct {
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
	DelaySecs   int `yaml:"delay_secs" mapstructure:"delay_secs"`
}

// DiscoveryConfig configures the recipient discovery strategies.
type DiscoveryConfig struct {
	DirectoryPages []string `yaml:"directory_pages" mapstructure:"directory_pages"`
}

// TwitterConfig holds the X/Twitter posting credentials.
type TwitterConfig struct {
	BearerToken string `yaml:"bearer_token" mapstructure:"bearer_token"`
}

// LinkedInConfig holds the LinkedIn posting credentials.
type LinkedInConfig struct {
	AccessToken string `yaml:"access_token" mapstructure:"access_token"`
	AuthorURN   string `yaml:"author_urn" mapstructure:"author_urn"`
}

// FacebookConfig holds the Facebook page posting credentials.
type FacebookConfig struct {
	AccessToken string `yaml:"access_token" mapstructure:"access_token"`
	PageID      string `yaml:"page_id" mapstructure:"page_id"`
}

// ServerConfig configures the session API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.fallback_locator", "local://press-archive.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("newsapi.language", "it")
	v.SetDefault("newsapi.page_size", 20)
	v.SetDefault("search.delay_secs", 2)
	v.SetDefault("resolver.max_attempts", 5)
	v.SetDefault("resolver.delay_secs", 2)
	v.SetDefault("smtp.port", 587)

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

// Validate checks the configuration for the given mode ("run", "generate",
// "discover", "serve"). All detected problems are reported together.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "run", "generate":
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
	case "discover":
		// Discovery degrades gracefully without credentials.
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Resolver.MaxAttempts < 1 || c.Resolver.MaxAttempts > 20 {
		problems = append(problems, "resolver.max_attempts must be between 1 and 20")
	}
	if c.NewsAPI.PageSize < 1 || c.NewsAPI.PageSize > 100 {
		problems = append(problems, "newsapi.page_size must be between 1 and 100")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Redacted returns a copy with every secret masked, for display.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	c.Anthropic.Key = mask(c.Anthropic.Key)
	c.NewsAPI.Key = mask(c.NewsAPI.Key)
	c.SMTP.Password = mask(c.SMTP.Password)
	c.Twitter.BearerToken = mask(c.Twitter.BearerToken)
	c.LinkedIn.AccessToken = mask(c.LinkedIn.AccessToken)
	c.Facebook.AccessToken = mask(c.Facebook.AccessToken)
	c.Store.Locator = redactLocator(c.Store.Locator)
	return c
}

// redactLocator masks credentials embedded in a database locator.
func redactLocator(locator string) string {
	at := strings.LastIndex(locator, "@")
	if at < 0 {
		return locator
	}
	scheme := strings.Index(locator, "://")
	if scheme < 0 || scheme+3 > at {
		return locator
	}
	return locator[:scheme+3] + "********" + locator[at:]
}
