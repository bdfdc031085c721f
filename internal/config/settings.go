package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Settings are the values that differ between deployments. Tuning knobs stay as constants.
type Settings struct {
	IsProd     bool   `mapstructure:"is_prod"`
	LogLevel   string `mapstructure:"log_level"`
	ListenAddr string `mapstructure:"listen_addr"`

	AuthToken    string `mapstructure:"auth_token"`
	NoAuthBypass bool   `mapstructure:"no_auth_bypass"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`

	QdrantHost string `mapstructure:"qdrant_host"`
	QdrantPort int    `mapstructure:"qdrant_port"`
	QdrantKey  string `mapstructure:"qdrant_api_key"`
	// VectorStore is "qdrant" or "memory".
	VectorStore string `mapstructure:"vector_store"`

	SqliteDir string `mapstructure:"sqlite_dir"`

	// Provider is "gemini" or "openai" and selects both generation and embeddings.
	Provider       string `mapstructure:"provider"`
	GeminiAPIKey   string `mapstructure:"gemini_api_key"`
	GeminiModel    string `mapstructure:"gemini_model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	OpenAIAPIKey   string `mapstructure:"openai_api_key"`
	OpenAIBaseURL  string `mapstructure:"openai_base_url"`
	OpenAIModel    string `mapstructure:"openai_model"`
	OpenAIEmbed    string `mapstructure:"openai_embedding_model"`

	RerankerURL string `mapstructure:"reranker_url"`
}

var settingKeys = []string{
	"is_prod", "log_level", "listen_addr", "auth_token", "no_auth_bypass",
	"redis_addr", "redis_password", "qdrant_host", "qdrant_port", "qdrant_api_key",
	"vector_store", "sqlite_dir", "provider", "gemini_api_key", "gemini_model",
	"embedding_model", "openai_api_key", "openai_base_url", "openai_model", "openai_embedding_model",
	"reranker_url",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("is_prod", false)
	v.SetDefault("log_level", "debug")
	v.SetDefault("listen_addr", ServerListenAddr)
	v.SetDefault("no_auth_bypass", false)
	v.SetDefault("redis_addr", RedisAddr)
	v.SetDefault("qdrant_host", QdrantHost)
	v.SetDefault("qdrant_port", QdrantGrpcPort)
	v.SetDefault("vector_store", "qdrant")
	v.SetDefault("sqlite_dir", SqliteDataDir)
	v.SetDefault("provider", "gemini")
	v.SetDefault("gemini_model", GeminiModelName)
	v.SetDefault("embedding_model", GoogleEmbeddingModel)
	v.SetDefault("openai_model", OpenAIModelName)
	v.SetDefault("openai_embedding_model", OpenAIEmbeddingModel)
	v.SetDefault("reranker_url", "http://localhost:8081")
}

// Load reads settings from defaults, an optional yaml file and the environment (REDIS_ADDR, QDRANT_HOST, ...).
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range settingKeys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", key, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := settings.validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *Settings) validate() error {
	switch s.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown provider %q", s.Provider)
	}
	switch s.VectorStore {
	case "qdrant", "memory":
	default:
		return fmt.Errorf("unknown vector store %q", s.VectorStore)
	}
	if !s.NoAuthBypass && s.AuthToken == "" {
		return errors.New("auth_token is required unless no_auth_bypass is set")
	}
	return nil
}
