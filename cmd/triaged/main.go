package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fenilsonani/desk-triage/internal/config"
	"github.com/fenilsonani/desk-triage/internal/daemon"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"

	configPath  string
	testConfig  bool
	showVersion bool
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&testConfig, "test-config", false, "Test configuration and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Printf("Desk Triage Daemon v%s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if cfg.Daemon == nil || !cfg.Daemon.Enabled {
		fmt.Fprintf(os.Stderr, "Daemon not enabled in configuration\n")
		fmt.Fprintf(os.Stderr, "Add the following to your config file:\n")
		fmt.Fprintf(os.Stderr, "daemon:\n")
		fmt.Fprintf(os.Stderr, "  enabled: true\n")
		fmt.Fprintf(os.Stderr, "  schedules:\n")
		fmt.Fprintf(os.Stderr, "    - name: nightly\n")
		fmt.Fprintf(os.Stderr, "      schedule: \"0 2 * * *\"\n")
		fmt.Fprintf(os.Stderr, "      apply: true\n")
		os.Exit(1)
	}

	if len(cfg.Daemon.Schedules) == 0 {
		fmt.Fprintf(os.Stderr, "No schedules configured. Add at least one schedule.\n")
		os.Exit(1)
	}

	if testConfig {
		fmt.Println("Configuration is valid")
		fmt.Printf("Daemon enabled: %v\n", cfg.Daemon.Enabled)
		fmt.Printf("Schedules: %d\n", len(cfg.Daemon.Schedules))
		for _, sched := range cfg.Daemon.Schedules {
			mode := "plan"
			if sched.Apply {
				mode = "apply"
			}
			fmt.Printf("  - %s: %s (%s)\n", sched.Name, sched.Schedule, mode)
		}
		os.Exit(0)
	}

	if isRunning(cfg) {
		fmt.Fprintf(os.Stderr, "Daemon is already running\n")
		os.Exit(1)
	}

	d, err := daemon.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating daemon: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Starting Desk Triage Daemon...")
	if err := d.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting daemon: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	if _, err := os.Stat("/etc/desk-triage/config.yaml"); err == nil {
		return config.Load("/etc/desk-triage/config.yaml")
	}

	cfgPath, err := config.GetConfigPath()
	if err != nil {
		return nil, err
	}

	return config.Load(cfgPath)
}

func isRunning(cfg *config.Config) bool {
	pidFile := cfg.Daemon.PidFile
	if pidFile == "" {
		pidFile = "/var/run/desk-triage.pid"
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		return false
	}

	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	return process.Signal(nil) == nil
}
