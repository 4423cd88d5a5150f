package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the resolved application configuration. It is assembled once
// here and injected into agent constructors; nothing downstream reads the
// environment.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	Azure           AzureSettings
	ConfigDir       string
}

// AzureSettings holds Azure OpenAI connection settings. When APIKey is empty
// the agent falls back to Azure CLI credentials.
type AzureSettings struct {
	Endpoint   string
	Deployment string
	APIVersion string
	APIKey     string
}

// FileConfig represents the structure of ~/.scribe/config.yaml.
type FileConfig struct {
	APIKeys APIKeysConfig   `yaml:"api_keys"`
	Azure   AzureFileConfig `yaml:"azure"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Anthropic string `yaml:"anthropic"`
	OpenAI    string `yaml:"openai"`
	Google    string `yaml:"google"`
}

// AzureFileConfig holds Azure settings from file.
type AzureFileConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`
	APIKey     string `yaml:"api_key"`
}

// Load reads configuration from a .env file (if present), config files and
// environment variables. Environment variables take precedence over file
// configuration.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	cfg := &Config{
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		GoogleAPIKey:    getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		Azure: AzureSettings{
			Endpoint:   getEnvOrDefault("AZURE_OPENAI_ENDPOINT", fileConfig.Azure.Endpoint),
			Deployment: getEnvOrDefault("AZURE_OPENAI_CHAT_DEPLOYMENT_NAME", fileConfig.Azure.Deployment),
			APIVersion: getEnvOrDefault("AZURE_OPENAI_API_VERSION", fileConfig.Azure.APIVersion),
			APIKey:     getEnvOrDefault("AZURE_OPENAI_API_KEY", fileConfig.Azure.APIKey),
		},
		ConfigDir: configDir,
	}

	return cfg, nil
}

// HasAgent returns true if the named agent has the settings it needs.
func (c *Config) HasAgent(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	case "azure":
		return c.ValidateAzure() == nil
	case "mock":
		return true
	default:
		return false
	}
}

// ValidateAzure checks that the Azure settings required to construct the
// research agent are present. An API key is not required: the agent can fall
// back to Azure CLI credentials.
func (c *Config) ValidateAzure() error {
	if c.Azure.Endpoint == "" {
		return fmt.Errorf("AZURE_OPENAI_ENDPOINT is required")
	}
	if c.Azure.Deployment == "" {
		return fmt.Errorf("AZURE_OPENAI_CHAT_DEPLOYMENT_NAME is required")
	}
	return nil
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, cfg)
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".scribe")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
