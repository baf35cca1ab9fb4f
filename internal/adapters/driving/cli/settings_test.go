package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

// mockSettingsService serves fixed settings to the settings commands.
type mockSettingsService struct {
	settings domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error { return nil }

func (m *mockSettingsService) SetEmbeddingProvider(_ domain.AIProvider, _, _ string) error {
	return nil
}

func (m *mockSettingsService) SetLLMProvider(_ domain.AIProvider, _, _ string) error {
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }

func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

func configuredSettings() domain.AppSettings {
	s := domain.DefaultAppSettings()
	s.Embedding = domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "nomic-embed-text",
		BaseURL:  "http://localhost:11434",
	}
	s.LLM = domain.LLMSettings{
		Provider: domain.AIProviderOpenAI,
		Model:    "gpt-4o-mini",
		APIKey:   "sk-proj-1234567890abcdef",
	}
	return s
}

func TestSettingsShow_Configured(t *testing.T) {
	original := settingsService
	settingsService = &mockSettingsService{settings: configuredSettings()}
	defer func() { settingsService = original }()

	cmd, buf := newCaptureCmd()
	require.NoError(t, runSettingsShow(cmd, nil))

	out := buf.String()
	assert.Contains(t, out, "Provider: Ollama (local)")
	assert.Contains(t, out, "Base URL: http://localhost:11434")
	assert.Contains(t, out, "Provider: OpenAI (cloud)")
	assert.Contains(t, out, "API Key: sk-p...cdef", "the key must never print in full")
	assert.NotContains(t, out, "sk-proj-1234567890abcdef")
	assert.Contains(t, out, "Sampling: 12500 records (seed 42)")
	assert.Contains(t, out, "Top K: 5")
	assert.Contains(t, out, "Configuration is complete.")
}

func TestSettingsShow_Unconfigured(t *testing.T) {
	original := settingsService
	settingsService = &mockSettingsService{settings: domain.DefaultAppSettings()}
	defer func() { settingsService = original }()

	cmd, buf := newCaptureCmd()
	require.NoError(t, runSettingsShow(cmd, nil))

	out := buf.String()
	assert.Contains(t, out, "Status: not configured")
	assert.Contains(t, out, "Run 'crag settings wizard' to finish configuration.")
}

func TestSettingsShow_NoService(t *testing.T) {
	original := settingsService
	settingsService = nil
	defer func() { settingsService = original }()

	cmd, _ := newCaptureCmd()
	assert.Error(t, runSettingsShow(cmd, nil))
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "****"},
		{"short", "****"},
		{"12345678", "****"},
		{"sk-1234567890abcdef", "sk-1...cdef"},
		{"sk-proj-1234567890abcdefghijklmnop", "sk-p...mnop"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, maskAPIKey(tt.key), "key %q", tt.key)
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty falls back", "", 1},
		{"whitespace falls back", "   ", 1},
		{"not a number falls back", "ollama", 1},
		{"below range falls back", "0", 1},
		{"negative falls back", "-2", 1},
		{"above range falls back", "3", 1},
		{"lowest valid", "1", 1},
		{"highest valid", "2", 2},
	}

	// Two providers to choose from, Ollama as the default.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseChoice(tt.input, 2, 1))
		})
	}
}
