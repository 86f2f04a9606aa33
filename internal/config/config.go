package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Template TemplateConfig
	CORS     CORSConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// MongoDBConfig holds MongoDB connection and role settings.
type MongoDBConfig struct {
	URI string `mapstructure:"uri"`
	// Timeout bounds every outbound database call.
	Timeout time.Duration `mapstructure:"timeout"`
	// UsersDatabase backs the principal directory and holds all user
	// documents the adapter grants roles to.
	UsersDatabase string `mapstructure:"users_database"`
	// DeveloperRoles are the built-in roles a generated developer role
	// inherits from.
	DeveloperRoles []string `mapstructure:"developer_roles"`
	// ConsumerActions is the action set granted to generated consumer roles.
	ConsumerActions []string `mapstructure:"consumer_actions"`
}

// TemplateConfig holds the use case template identifiers the descriptor
// parser checks components and subcomponents against.
type TemplateConfig struct {
	ID    string `mapstructure:"id"`
	SubID string `mapstructure:"sub_id"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the MONGOPROV_
// prefix. The platform-facing flat names (USERS_DATABASE, DEVELOPER_ROLES,
// CONSUMER_ACTIONS, USECASETEMPLATEID, USECASETEMPLATESUBID) are bound as
// aliases of their nested keys.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MONGOPROV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// MongoDB defaults
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.timeout", "10s")
	v.SetDefault("mongodb.users_database", "admin")
	v.SetDefault("mongodb.developer_roles", "readWrite")
	v.SetDefault("mongodb.consumer_actions", "find")

	// Template defaults
	v.SetDefault("template.id", "")
	v.SetDefault("template.sub_id", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys. The second
	// name in each binding is the flat alias recognized by the platform.
	envBindings := map[string][]string{
		"server.port":              {"MONGOPROV_SERVER_PORT"},
		"server.read_timeout":      {"MONGOPROV_SERVER_READ_TIMEOUT"},
		"server.write_timeout":     {"MONGOPROV_SERVER_WRITE_TIMEOUT"},
		"server.environment":       {"MONGOPROV_SERVER_ENVIRONMENT"},
		"mongodb.uri":              {"MONGOPROV_MONGODB_URI"},
		"mongodb.timeout":          {"MONGOPROV_MONGODB_TIMEOUT"},
		"mongodb.users_database":   {"MONGOPROV_MONGODB_USERS_DATABASE", "USERS_DATABASE"},
		"mongodb.developer_roles":  {"MONGOPROV_MONGODB_DEVELOPER_ROLES", "DEVELOPER_ROLES"},
		"mongodb.consumer_actions": {"MONGOPROV_MONGODB_CONSUMER_ACTIONS", "CONSUMER_ACTIONS"},
		"template.id":              {"MONGOPROV_TEMPLATE_ID", "USECASETEMPLATEID"},
		"template.sub_id":          {"MONGOPROV_TEMPLATE_SUB_ID", "USECASETEMPLATESUBID"},
		"log.level":                {"MONGOPROV_LOG_LEVEL"},
		"log.format":               {"MONGOPROV_LOG_FORMAT"},
		"cors.allowed_origins":     {"MONGOPROV_CORS_ALLOWED_ORIGINS"},
	}
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	cfg := &Config{}
	cfg.Server = ServerConfig{
		Port:         v.GetString("server.port"),
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.MongoDB = MongoDBConfig{
		URI:             v.GetString("mongodb.uri"),
		Timeout:         v.GetDuration("mongodb.timeout"),
		UsersDatabase:   v.GetString("mongodb.users_database"),
		DeveloperRoles:  splitCSV(v.GetString("mongodb.developer_roles")),
		ConsumerActions: splitCSV(v.GetString("mongodb.consumer_actions")),
	}
	cfg.Template = TemplateConfig{
		ID:    v.GetString("template.id"),
		SubID: v.GetString("template.sub_id"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitCSV(v.GetString("cors.allowed_origins")),
	}

	return cfg, nil
}

// splitCSV parses a comma-separated list, trimming blanks.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
