/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends
const (
	StorageBackendMySQL    = "mysql"
	StorageBackendPostgres = "postgres"
	StorageBackendCSV      = "csv"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Tracker     TrackerConfig     `mapstructure:"tracker"`
	Attachments AttachmentsConfig `mapstructure:"attachments"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	CORS        CORSConfig        `mapstructure:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StorageConfig selects the record store backend
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	CSVPath string `mapstructure:"csv_path"`
}

// DatabaseConfig holds the hosted table connection settings
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"`
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// TrackerConfig holds the issue tracker credentials. All four of BaseURL,
// AccountEmail, APIToken and ProjectKey must be set for tickets to be created.
type TrackerConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	AccountEmail string        `mapstructure:"account_email"`
	APIToken     string        `mapstructure:"api_token"`
	ProjectKey   string        `mapstructure:"project_key"`
	IssueType    string        `mapstructure:"issue_type"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// AttachmentsConfig holds attachment sink configuration
type AttachmentsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Directory      string `mapstructure:"directory"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigin  string   `mapstructure:"allowed_origin"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

var globalConfig *Config

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("deployment")
		v.SetConfigType("yaml")
		v.AddConfigPath("./repository/conf")            // Production: <binary_dir>/repository/conf/
		v.AddConfigPath("./cmd/server/repository/conf") // Development
		v.AddConfigPath("../repository/conf")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindTrackerEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	globalConfig = &config
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.hostname", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("storage.backend", StorageBackendCSV)
	v.SetDefault("storage.csv_path", "intake_requests.csv")
	v.SetDefault("database.type", StorageBackendMySQL)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("tracker.issue_type", "Task")
	v.SetDefault("tracker.timeout", 15*time.Second)
	v.SetDefault("attachments.enabled", true)
	v.SetDefault("attachments.directory", "repository/attachments")
	v.SetDefault("attachments.max_upload_bytes", 32<<20)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("cors.allowed_origin", "https://revenue-intake-app.pages.dev")
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type"})
}

// bindTrackerEnv keeps the tracker's historical environment variable names working.
func bindTrackerEnv(v *viper.Viper) {
	_ = v.BindEnv("tracker.base_url", "INTAKE_TRACKER_BASE_URL", "JIRA_BASE_URL")
	_ = v.BindEnv("tracker.account_email", "INTAKE_TRACKER_ACCOUNT_EMAIL", "JIRA_EMAIL")
	_ = v.BindEnv("tracker.api_token", "INTAKE_TRACKER_API_TOKEN", "JIRA_API_TOKEN")
	_ = v.BindEnv("tracker.project_key", "INTAKE_TRACKER_PROJECT_KEY", "JIRA_PROJECT_KEY")
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	switch config.Storage.Backend {
	case StorageBackendMySQL, StorageBackendPostgres:
		if config.Database.Hostname == "" {
			return fmt.Errorf("database hostname is required")
		}
		if config.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	case StorageBackendCSV:
		if config.Storage.CSVPath == "" {
			return fmt.Errorf("csv path is required for the csv storage backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %q", config.Storage.Backend)
	}

	if config.Attachments.Enabled && config.Attachments.Directory == "" {
		return fmt.Errorf("attachments directory is required when attachments are enabled")
	}

	return nil
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// SetGlobal sets the global configuration (for testing purposes)
func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// GetDSN returns the driver-specific connection string
func (d *DatabaseConfig) GetDSN() string {
	if d.Type == StorageBackendPostgres {
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			d.User,
			d.Password,
			d.Hostname,
			d.Port,
			d.Database,
			sslMode,
		)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&clientFoundRows=true",
		d.User,
		d.Password,
		d.Hostname,
		d.Port,
		d.Database,
	)
}

// GetServerAddress returns the server address in host:port format
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}

// IsConfigured reports whether every credential needed to create tickets is present
func (t *TrackerConfig) IsConfigured() bool {
	return t.BaseURL != "" && t.AccountEmail != "" && t.APIToken != "" && t.ProjectKey != ""
}
