package config

import (
	"os"
	"path/filepath"
)

// GetDefault returns the default configuration
func GetDefault() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return &Config{
		Scan: ScanConfig{
			Roots: []string{
				filepath.Join(home, "Desktop"),
				filepath.Join(home, "Downloads"),
			},
			IgnoreExtensions: []string{
				".ini", ".sys", ".dll", // system files
			},
			IgnoreFolders: []string{
				"$RECYCLE.BIN", "System Volume Information",
				".git", "node_modules", "__pycache__",
			},
			MinFileSizeMB: 0, // 0 = no minimum
			Recursive:     false,
		},
		Strategy: StrategyConfig{
			Provider:        "remote",
			FallbackEnabled: true,
			Remote: RemoteConfig{
				Endpoint:          "https://dashscope.aliyuncs.com/compatible-mode/v1",
				Model:             "qwen-plus",
				APIKey:            "",
				TimeoutSeconds:    120,
				MaxRetries:        3,
				RetryDelaySeconds: 5,
			},
			Rules: RulesConfig{
				OldFileDays:  90,
				TempFileDays: 7,
			},
		},
		BatchSize: 10, // files per classification request; 5-20 is sane
		Backup: BackupConfig{
			Enabled: true,
			Folder:  filepath.Join(home, ".local", "share", "desk-triage", "backup"),
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(home, ".local", "share", "desk-triage", "history.db"),
		},
		DryRun:  false,
		Verbose: false,
	}
}

// GetExampleConfig returns an example configuration with comments
func GetExampleConfig() string {
	return `# desk-triage Configuration File
# Location: ~/.config/desk-triage/config.yaml

# Directories to triage. Only files directly inside each root are
# considered unless recursive is enabled.
scan:
  roots:
    - "~/Desktop"
    - "~/Downloads"

  # Extensions to skip entirely (leading dot required, case-insensitive)
  ignore_extensions:
    - ".ini"
    - ".sys"
    - ".dll"

  # Folder names to skip; only consulted when recursive is true
  ignore_folders:
    - "$RECYCLE.BIN"
    - "System Volume Information"
    - ".git"
    - "node_modules"
    - "__pycache__"

  # Ignore files smaller than this (in MB). 0 disables the check.
  min_file_size_mb: 0

  # Descend into subdirectories. Off by default.
  recursive: false

# Classification strategy
strategy:
  # "remote" sends file metadata to an OpenAI-compatible chat endpoint,
  # "rules" uses the offline deterministic rule engine.
  provider: "remote"

  # When the remote strategy fails for a batch, retry that batch with
  # the rule engine instead of dropping it.
  fallback_enabled: true

  remote:
    endpoint: "https://dashscope.aliyuncs.com/compatible-mode/v1"
    model: "qwen-plus"
    api_key: ""            # required for the remote provider
    timeout_seconds: 120   # per attempt, not per retry series
    max_retries: 3
    retry_delay_seconds: 5 # backoff grows linearly: delay * attempt

  rules:
    old_file_days: 90   # unmodified for this long = archive candidate
    temp_file_days: 7   # temp files older than this = delete candidate

# Files sent per classification request. Also sets progress granularity.
batch_size: 10

# Copy files into a dated backup folder before deleting them
backup:
  enabled: true
  folder: "~/.local/share/desk-triage/backup"

# Record completed runs in a local sqlite database ("triage history")
history:
  enabled: true
  path: "~/.local/share/desk-triage/history.db"

# Show what would happen without touching the filesystem
dry_run: false

verbose: false

# Optional daemon mode: scheduled unattended triage runs
# daemon:
#   enabled: true
#   pid_file: "/tmp/triaged.pid"
#   log_file: "/tmp/triaged.log"
#   log_level: "info"
#   schedules:
#     - name: nightly
#       schedule: "0 2 * * *"
#       provider: "rules"   # override the configured provider
#       apply: false        # plan only; set true to execute actions
#   notifications:
#     enabled: true
#     on_success: true
#     on_failure: true
#     webhook:
#       url: "https://example.com/hook"
#       method: "POST"
`
}
