package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "bewatu"
)

type Config struct {
	Session string         `mapstructure:"session"`
	Profile *ProfileConfig `mapstructure:"profile"`
	AI      *AIConfig      `mapstructure:"ai"`
	Cache   *CacheConfig   `mapstructure:"cache"`
	Feed    *FeedConfig    `mapstructure:"feed"`
	Serve   *ServeConfig   `mapstructure:"serve"`
}

// ProfileConfig describes the signed-in user. It is kept at the top of the
// generated user list.
type ProfileConfig struct {
	ID       int    `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Headline string `mapstructure:"headline"`
	Industry string `mapstructure:"industry"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Language string        `mapstructure:"language"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	SearchModel  string `mapstructure:"search-model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   *RedisConfig  `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type FeedConfig struct {
	MutedAuthors       []int  `mapstructure:"muted-authors"`
	HiddenFile         string `mapstructure:"hidden-file"`
	HideUnknownAuthors bool   `mapstructure:"hide-unknown-authors"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "bewatu is a cli for the BeWatu professional network: ranked feeds, circles and candidate search",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE")
	bindEnv("session", "BEWATU_SESSION")
	bindEnv("cache.redis.addr", "BEWATU_REDIS_ADDR")

	viper.SetDefault("session", "default")
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.language", "en")
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("feed.hide-unknown-authors", true)
	viper.SetDefault("serve.addr", ":8080")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is bewatu.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("session", "s", "", "session id the generated network is cached under")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("session", rootCmd.PersistentFlags().Lookup("session"))
}

func bindEnv(key, env string) {
	if err := viper.BindEnv(key, env); err != nil {
		log.Fatalf("binding %s environment variable: %v", env, err)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()

	// Everything has a default, so a missing bewatu.yaml is fine. An explicit
	// --config must exist and parse.
	var notFound viper.ConfigFileNotFoundError
	if err != nil && (cfgFile != "" || !errors.As(err, &notFound)) {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Cache == nil {
		config.Cache = &CacheConfig{}
	}
	if config.Feed == nil {
		config.Feed = &FeedConfig{}
	}
	if config.Serve == nil {
		config.Serve = &ServeConfig{}
	}

	return config, nil
}
