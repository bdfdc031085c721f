package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("AUTH_TOKEN", "secret")
	t.Setenv("REDIS_ADDR", "redis:6380")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "secret", s.AuthToken)
	assert.Equal(t, "redis:6380", s.RedisAddr)
	assert.Equal(t, ServerListenAddr, s.ListenAddr)
	assert.Equal(t, "gemini", s.Provider)
	assert.Equal(t, QdrantGrpcPort, s.QdrantPort)
	assert.Equal(t, OpenAIEmbeddingModel, s.OpenAIEmbed)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "no_auth_bypass: true\nprovider: openai\nvector_store: memory\nopenai_base_url: http://llm:8000/v1\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.True(t, s.NoAuthBypass)
	assert.Equal(t, "openai", s.Provider)
	assert.Equal(t, "memory", s.VectorStore)
	assert.Equal(t, "http://llm:8000/v1", s.OpenAIBaseURL)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"Missing_Token", map[string]string{}},
		{"Unknown_Provider", map[string]string{"AUTH_TOKEN": "x", "PROVIDER": "llama"}},
		{"Unknown_Store", map[string]string{"AUTH_TOKEN": "x", "VECTOR_STORE": "faiss"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AUTH_TOKEN", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
