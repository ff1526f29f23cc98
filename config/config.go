package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// CognitoConfig is named so the auth service can take it directly.
type CognitoConfig struct {
	AppClientId     string `yaml:"appClientId"`
	AppClientSecret string `yaml:"appClientSecret"`
	UserPoolId      string `yaml:"userPoolId"`
	Region          string `yaml:"region"`
}

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"corsOrigins"`
		UploadDir   string   `yaml:"uploadDir"`
	} `yaml:"server"`

	Cognito CognitoConfig `yaml:"cognito"`

	OpenRouter struct {
		ApiKey  string `yaml:"apiKey"`
		BaseURL string `yaml:"baseUrl"`
	} `yaml:"openrouter"`

	Database struct {
		URI string `yaml:"uri"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Admin struct {
		JWTSecret     string `yaml:"jwtSecret"`
		TokenTTLHours int    `yaml:"tokenTtlHours"`
	} `yaml:"admin"`
}

// LoadConfig reads the configuration file, applies environment overrides for
// secrets, and validates that everything the server cannot run without is set.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.OpenRouter.ApiKey = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.Database.URI = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("ADMIN_JWT_SECRET"); v != "" {
		c.Admin.JWTSecret = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.UploadDir == "" {
		c.Server.UploadDir = "uploads"
	}
	if c.OpenRouter.BaseURL == "" {
		c.OpenRouter.BaseURL = defaultOpenRouterBaseURL
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Admin.TokenTTLHours == 0 {
		c.Admin.TokenTTLHours = 24
	}
	if c.Cognito.Region == "" {
		c.Cognito.Region = "ap-south-1"
	}
}

// validate reports the first missing hard requirement. The server cannot run
// without its gateway key, database, or identity pool.
func (c *Config) validate() error {
	switch {
	case c.OpenRouter.ApiKey == "":
		return fmt.Errorf("config: openrouter.apiKey (or OPENROUTER_API_KEY) is required")
	case c.Database.URI == "":
		return fmt.Errorf("config: database.uri (or MONGODB_URI) is required")
	case c.Cognito.AppClientId == "":
		return fmt.Errorf("config: cognito.appClientId is required")
	case c.Cognito.UserPoolId == "":
		return fmt.Errorf("config: cognito.userPoolId is required")
	case c.Admin.JWTSecret == "":
		return fmt.Errorf("config: admin.jwtSecret (or ADMIN_JWT_SECRET) is required")
	}
	return nil
}
