package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Scan      ScanConfig     `yaml:"scan"`
	Strategy  StrategyConfig `yaml:"strategy"`
	BatchSize int            `yaml:"batch_size"`
	Backup    BackupConfig   `yaml:"backup"`
	History   HistoryConfig  `yaml:"history"`
	Daemon    *DaemonConfig  `yaml:"daemon,omitempty"`
	DryRun    bool           `yaml:"dry_run"`
	Verbose   bool           `yaml:"verbose"`
}

// ScanConfig controls which files the scanner picks up
type ScanConfig struct {
	Roots            []string `yaml:"roots"`
	IgnoreExtensions []string `yaml:"ignore_extensions"`
	IgnoreFolders    []string `yaml:"ignore_folders"`
	MinFileSizeMB    float64  `yaml:"min_file_size_mb"`
	Recursive        bool     `yaml:"recursive"`
}

// StrategyConfig selects and configures the classification strategy
type StrategyConfig struct {
	Provider        string       `yaml:"provider"` // "remote" or "rules"
	FallbackEnabled bool         `yaml:"fallback_enabled"`
	Remote          RemoteConfig `yaml:"remote"`
	Rules           RulesConfig  `yaml:"rules"`
}

// RemoteConfig holds settings for the remote model strategy
type RemoteConfig struct {
	Endpoint          string `yaml:"endpoint"`
	Model             string `yaml:"model"`
	APIKey            string `yaml:"api_key"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	MaxRetries        int    `yaml:"max_retries"`
	RetryDelaySeconds int    `yaml:"retry_delay_seconds"`
}

// RulesConfig holds age thresholds for the rule-based strategy (in days)
type RulesConfig struct {
	OldFileDays  int `yaml:"old_file_days"`
	TempFileDays int `yaml:"temp_file_days"`
}

// BackupConfig controls the delete-with-backup behavior
type BackupConfig struct {
	Enabled bool   `yaml:"enabled"`
	Folder  string `yaml:"folder"`
}

// HistoryConfig controls the run-history store
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DaemonConfig holds daemon mode configuration
type DaemonConfig struct {
	Enabled       bool               `yaml:"enabled"`
	PidFile       string             `yaml:"pid_file"`
	LogFile       string             `yaml:"log_file"`
	LogLevel      string             `yaml:"log_level"`
	Schedules     []TriageSchedule   `yaml:"schedules"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// TriageSchedule defines a scheduled triage run
type TriageSchedule struct {
	Name     string `yaml:"name"`
	Schedule string `yaml:"schedule"` // Cron expression
	Provider string `yaml:"provider,omitempty"`
	Apply    bool   `yaml:"apply"` // false = plan only, no filesystem changes
	DryRun   bool   `yaml:"dry_run"`
}

// NotificationConfig holds notification settings
type NotificationConfig struct {
	Enabled   bool          `yaml:"enabled"`
	OnSuccess bool          `yaml:"on_success"`
	OnFailure bool          `yaml:"on_failure"`
	Email     EmailConfig   `yaml:"email"`
	Webhook   WebhookConfig `yaml:"webhook"`
}

// EmailConfig holds email notification settings
type EmailConfig struct {
	SMTPHost string   `yaml:"smtp_host"`
	SMTPPort int      `yaml:"smtp_port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
	UseTLS   bool     `yaml:"use_tls"`
}

// WebhookConfig holds webhook notification settings
type WebhookConfig struct {
	URL     string            `yaml:"url"`
	Method  string            `yaml:"method"`
	Headers map[string]string `yaml:"headers"`
}

// Load loads configuration from a file
func Load(configPath string) (*Config, error) {
	// If config doesn't exist, return default config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.expandPaths()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// expandPaths resolves a leading ~ in every configured path
func (c *Config) expandPaths() {
	for i, root := range c.Scan.Roots {
		c.Scan.Roots[i] = expandHome(root)
	}
	c.Backup.Folder = expandHome(c.Backup.Folder)
	c.History.Path = expandHome(c.History.Path)
	if c.Daemon != nil {
		c.Daemon.PidFile = expandHome(c.Daemon.PidFile)
		c.Daemon.LogFile = expandHome(c.Daemon.LogFile)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0")
	}

	if c.Scan.MinFileSizeMB < 0 {
		return fmt.Errorf("min_file_size_mb must be >= 0")
	}

	// Matching is exact including the dot, so catch entries missing it early
	for _, ext := range c.Scan.IgnoreExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("ignore_extensions entry must include leading dot: %s", ext)
		}
	}

	if c.Strategy.Provider == "" {
		return fmt.Errorf("strategy provider must be set")
	}

	if c.Strategy.Rules.OldFileDays < 0 {
		return fmt.Errorf("old_file_days must be >= 0")
	}
	if c.Strategy.Rules.TempFileDays < 0 {
		return fmt.Errorf("temp_file_days must be >= 0")
	}

	if c.Strategy.Remote.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be >= 1")
	}
	if c.Strategy.Remote.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be > 0")
	}
	if c.Strategy.Remote.RetryDelaySeconds < 0 {
		return fmt.Errorf("retry_delay_seconds must be >= 0")
	}

	if c.Backup.Enabled && c.Backup.Folder == "" {
		return fmt.Errorf("backup folder must be set when backup is enabled")
	}

	return nil
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".config", "desk-triage")
	return filepath.Join(configDir, "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	// Check if config exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return "", fmt.Errorf("failed to create config directory: %w", err)
		}
		// Write the commented example so the defaults stay discoverable
		if err := os.WriteFile(configPath, []byte(GetExampleConfig()), 0644); err != nil {
			return "", fmt.Errorf("failed to write config file: %w", err)
		}
	}

	return configPath, nil
}
