package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Dataset DatasetConfig
	SQLite  SQLiteConfig
	Redis   RedisConfig
	LLM     LLMConfig
	Model   ModelConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

// DatasetConfig selects the employee dataset backend. Backend is one of
// "csv", "sqlite", "rest".
type DatasetConfig struct {
	Backend     string
	CSVPath     string
	SQLitePath  string
	SQLiteTable string
	RESTURL     string
	RESTAPIKey  string
	TimeoutSec  int
	CacheTTLSec int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type LLMConfig struct {
	BaseURL             string
	APIKey              string
	Model               string
	Temperature         float32
	MaxTokens           int
	TimeoutSec          int
	ClassifierEnabled   bool
	ConfidenceThreshold float64
	TranslationCacheLen int
}

type ModelConfig struct {
	ArtifactPath string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/hr-agent")

	viper.SetEnvPrefix("HR_AGENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("dataset.backend", "csv")
	viper.SetDefault("dataset.csvPath", "./data/hr_master.csv")
	viper.SetDefault("dataset.sqlitePath", "./data/hr_master.db")
	viper.SetDefault("dataset.sqliteTable", "hr_master")
	viper.SetDefault("dataset.restURL", "")
	viper.SetDefault("dataset.timeoutSec", 20)
	viper.SetDefault("dataset.cacheTTLSec", 300)

	viper.SetDefault("sqlite.path", "./data/hragent.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlSec", 300)

	viper.SetDefault("llm.baseURL", "https://api.groq.com/openai/v1")
	viper.SetDefault("llm.model", "llama-3.1-8b-instant")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.maxTokens", 1024)
	viper.SetDefault("llm.timeoutSec", 20)
	viper.SetDefault("llm.classifierEnabled", false)
	viper.SetDefault("llm.confidenceThreshold", 0.6)
	viper.SetDefault("llm.translationCacheLen", 100)

	viper.SetDefault("model.artifactPath", "./ml/attrition_model.json")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
