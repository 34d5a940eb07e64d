package config

import (
	"log"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Agent names used for the A2A agent card and log prefixes
const (
	ServerAgentName = "TicketsmithAgent"
	CLIAgentName    = "TicketsmithCLI"
)

// Guardrail policies for output checks
const (
	PolicyAbort    = "abort"
	PolicyAnnotate = "annotate"
)

// Config holds the application configuration
type Config struct {
	// HTTP facade
	ServerPort int
	ServerHost string

	// A2A server
	A2AEnabled   bool
	A2APort      int
	AgentName    string
	AgentVersion string
	AgentURL     string

	// Authentication
	AuthType  string // "", "jwt" or "apikey"
	JWTSecret string
	APIKey    string

	// LLM configuration
	LLMProvider    string // "openai", "azure", "anthropic", "ollama"
	LLMModel       string
	LLMAPIKey      string
	LLMServiceURL  string
	LLMMaxTokens   int
	LLMTimeout     int // in seconds
	LLMTemperature float64

	// Jira configuration
	JiraBaseURL  string
	JiraUsername string
	JiraAPIToken string

	// File outputs
	OutputDir string
	TestsDir  string

	GuardrailPolicy string
	LogLevel        string
}

var (
	v        *viper.Viper
	initOnce sync.Once
)

// GetViper returns the shared viper instance, loading .env files on first use
func GetViper() *viper.Viper {
	initOnce.Do(func() {
		loadDotEnv()
		v = viper.New()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()
		setDefaults(v)
	})
	return v
}

// loadDotEnv loads environment variables from the nearest .env file
func loadDotEnv() {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(path); err == nil {
			log.Printf("Loaded configuration from %s file", path)
			return
		}
	}
	log.Println("No .env file found or error loading it. Using environment variables or defaults.")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", 8000)
	v.SetDefault("server_host", "localhost")

	v.SetDefault("a2a_enabled", false)
	v.SetDefault("a2a_port", 8080)
	v.SetDefault("agent_name", ServerAgentName)
	v.SetDefault("agent_version", "1.0.0")
	v.SetDefault("agent_url", "http://localhost:8080")

	v.SetDefault("auth_type", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("api_key", "")

	v.SetDefault("llm_provider", "openai")
	v.SetDefault("llm_model", "gpt-4o")
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_service_url", "")
	v.SetDefault("llm_max_tokens", 4000)
	v.SetDefault("llm_timeout", 60)
	v.SetDefault("llm_temperature", 0.0)

	v.SetDefault("jira_base_url", "")
	v.SetDefault("jira_username", "")
	v.SetDefault("jira_api_token", "")

	v.SetDefault("output_dir", ".")
	v.SetDefault("tests_dir", "generated_tests")

	v.SetDefault("guardrail_policy", PolicyAbort)
	v.SetDefault("log_level", "info")
}

// NewConfig creates a new configuration from defaults, .env files and environment variables
func NewConfig() *Config {
	return FromViper(GetViper())
}

// FromViper builds a Config from an arbitrary viper instance
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		ServerPort: v.GetInt("server_port"),
		ServerHost: v.GetString("server_host"),

		A2AEnabled:   v.GetBool("a2a_enabled"),
		A2APort:      v.GetInt("a2a_port"),
		AgentName:    v.GetString("agent_name"),
		AgentVersion: v.GetString("agent_version"),
		AgentURL:     v.GetString("agent_url"),

		AuthType:  v.GetString("auth_type"),
		JWTSecret: v.GetString("jwt_secret"),
		APIKey:    v.GetString("api_key"),

		LLMProvider:    v.GetString("llm_provider"),
		LLMModel:       v.GetString("llm_model"),
		LLMAPIKey:      v.GetString("llm_api_key"),
		LLMServiceURL:  v.GetString("llm_service_url"),
		LLMMaxTokens:   v.GetInt("llm_max_tokens"),
		LLMTimeout:     v.GetInt("llm_timeout"),
		LLMTemperature: v.GetFloat64("llm_temperature"),

		JiraBaseURL:  v.GetString("jira_base_url"),
		JiraUsername: v.GetString("jira_username"),
		JiraAPIToken: v.GetString("jira_api_token"),

		OutputDir: v.GetString("output_dir"),
		TestsDir:  v.GetString("tests_dir"),

		GuardrailPolicy: strings.ToLower(v.GetString("guardrail_policy")),
		LogLevel:        v.GetString("log_level"),
	}

	// Fall back to OPENAI_API_KEY, which most local setups already export
	if cfg.LLMAPIKey == "" && cfg.LLMProvider == "openai" {
		cfg.LLMAPIKey = v.GetString("openai_api_key")
	}
	if cfg.GuardrailPolicy != PolicyAnnotate {
		cfg.GuardrailPolicy = PolicyAbort
	}
	return cfg
}

// JiraConfigured reports whether Jira credentials are present
func (c *Config) JiraConfigured() bool {
	return c.JiraBaseURL != "" && c.JiraUsername != "" && c.JiraAPIToken != ""
}
