package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "whisper-cli", cfg.WhisperBinary)
	assert.Equal(t, "models", cfg.ModelDir)
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, EngineLSA, cfg.SummarizerEngine)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLMHost)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithWhisperBinary("/opt/whisper/main"),
			WithModelDir("/var/models"),
			WithThreads(8),
			WithSummarizerEngine("llm"),
			WithLLMHost("http://gpu:8080/v1"),
			WithLLMModel("gpt-4o-mini"),
		)

		assert.Equal(t, "/opt/whisper/main", cfg.WhisperBinary)
		assert.Equal(t, "/var/models", cfg.ModelDir)
		assert.Equal(t, 8, cfg.Threads)
		assert.Equal(t, EngineLLM, cfg.SummarizerEngine)
		assert.Equal(t, "http://gpu:8080/v1", cfg.LLMHost)
		assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{name: "already has /v1", host: "http://localhost:11434/v1", expected: "http://localhost:11434/v1"},
		{name: "missing /v1", host: "http://localhost:11434", expected: "http://localhost:11434/v1"},
		{name: "has trailing slash", host: "http://localhost:11434/", expected: "http://localhost:11434/v1"},
		{name: "empty host", host: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LLMHost: tt.host, SummarizerEngine: " LSA "}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.LLMHost)
			assert.Equal(t, EngineLSA, cfg.SummarizerEngine)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid default", mutate: func(c *Config) {}},
		{name: "missing binary", mutate: func(c *Config) { c.WhisperBinary = "" }, wantErr: "WhisperBinary"},
		{name: "missing model dir", mutate: func(c *Config) { c.ModelDir = "" }, wantErr: "ModelDir"},
		{name: "zero threads", mutate: func(c *Config) { c.Threads = 0 }, wantErr: "Threads"},
		{name: "unknown engine", mutate: func(c *Config) { c.SummarizerEngine = "bart" }, wantErr: "SummarizerEngine"},
		{
			name: "llm without model",
			mutate: func(c *Config) {
				c.SummarizerEngine = EngineLLM
				c.LLMModel = ""
			},
			wantErr: "LLMModel",
		},
		{
			name:   "lsa ignores llm fields",
			mutate: func(c *Config) { c.LLMHost = ""; c.LLMModel = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProfileForLanguage(t *testing.T) {
	tests := map[string]Profile{
		"en":    ProfileEnglish,
		"vi":    ProfileEnglish,
		"fr":    ProfileFrench,
		"de":    ProfileGerman,
		"es":    ProfileSpanish,
		"zh":    ProfileEnglish,
		"ja":    ProfileEnglish,
		"FR-ca": ProfileFrench,
		"pt":    DefaultProfile,
		"":      DefaultProfile,
	}
	for code, want := range tests {
		assert.Equal(t, want, ProfileForLanguage(code), "code %q", code)
	}
}
