// Package daemon runs scheduled triage jobs in the background with PID
// and lock file management, graceful shutdown and optional notifications.
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fenilsonani/desk-triage/internal/config"
	"github.com/fenilsonani/desk-triage/internal/executor"
	"github.com/fenilsonani/desk-triage/internal/history"
	"github.com/fenilsonani/desk-triage/internal/scanner"
	"github.com/fenilsonani/desk-triage/internal/strategy"
	"github.com/fenilsonani/desk-triage/internal/triage"
)

// Daemon represents the triage daemon
type Daemon struct {
	config      *config.Config
	scheduler   *Scheduler
	notifier    *Notifier
	logger      *Logger
	running     bool
	shutdownCtx context.Context
	cancelFunc  context.CancelFunc
	mu          sync.RWMutex
}

// New creates a new daemon instance
func New(cfg *config.Config) (*Daemon, error) {
	if cfg.Daemon == nil || !cfg.Daemon.Enabled {
		return nil, fmt.Errorf("daemon not enabled in configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())

	logger, err := NewLogger(cfg.Daemon.LogFile, cfg.Daemon.LogLevel)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	daemon := &Daemon{
		config:      cfg,
		logger:      logger,
		shutdownCtx: ctx,
		cancelFunc:  cancel,
	}

	daemon.scheduler = NewScheduler(daemon, cfg.Daemon.Schedules)

	if cfg.Daemon.Notifications.Enabled {
		daemon.notifier = NewNotifier(&cfg.Daemon.Notifications, logger)
	}

	return daemon, nil
}

// Start starts the daemon and blocks until shutdown
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon already running")
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info("Starting triage daemon")

	if err := d.acquireLock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer d.releaseLock()

	if err := d.writePidFile(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer d.removePidFile()

	d.setupSignalHandlers()

	if err := d.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer d.scheduler.Stop()

	d.logger.Info("Daemon started successfully")

	if d.notifier != nil {
		d.notifier.SendStartupNotification()
	}

	<-d.shutdownCtx.Done()

	d.logger.Info("Daemon shutting down")

	d.mu.Lock()
	d.running = false
	d.mu.Unlock()

	if d.notifier != nil {
		d.notifier.SendShutdownNotification()
	}

	return nil
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	if d.cancelFunc != nil {
		d.cancelFunc()
	}
}

// IsRunning returns whether the daemon is running
func (d *Daemon) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// RunTriageJob executes one scheduled triage run
func (d *Daemon) RunTriageJob(job *TriageJob) error {
	d.logger.Info("Running triage job: %s", job.Name)
	startTime := time.Now()

	jobCfg := d.createJobConfig(job)

	scnr := scanner.New(&jobCfg.Scan, d.logger.Std())
	files := scnr.Scan(nil)
	stats := scnr.GetStatistics()

	d.logger.Info("Scan completed for job %s: %d files, %.2f MB",
		job.Name, stats.TotalFiles, stats.TotalSizeMB)

	if len(files) == 0 {
		d.logger.Info("Nothing to triage for job %s", job.Name)
		return nil
	}

	primary, err := strategy.New(jobCfg.Strategy.Provider, &jobCfg.Strategy)
	if err != nil {
		return fmt.Errorf("resolve strategy: %w", err)
	}
	var fallback strategy.Strategy
	if jobCfg.Strategy.FallbackEnabled {
		if fallback, err = strategy.New("rules", &jobCfg.Strategy); err != nil {
			return fmt.Errorf("resolve fallback: %w", err)
		}
	}

	coordinator := triage.New(primary, fallback, jobCfg.BatchSize, d.logger.Std())
	result, err := coordinator.Run(d.shutdownCtx, files, nil)
	if err != nil {
		d.logger.Error("Triage failed for job %s: %v", job.Name, err)
		return fmt.Errorf("triage failed: %w", err)
	}

	d.logger.Info("Triage completed for job %s: %d suggestions across %d categories",
		job.Name, len(result.Suggestions), len(result.Categories))

	if !job.Apply {
		d.logger.Info("Plan-only job %s - no filesystem changes", job.Name)
		return nil
	}

	ledger := executor.New(jobCfg, d.logger.Std()).Execute(result.Suggestions, nil)

	duration := time.Since(startTime)
	d.logger.Info("Job %s completed in %v: deleted %d, moved %d, kept %d, freed %.2f MB, %d errors",
		job.Name, duration.Round(time.Second), ledger.DeletedCount, ledger.MovedCount,
		ledger.KeptCount, ledger.FreedSpaceMB, len(ledger.Failures))

	d.recordHistory(jobCfg, startTime, stats.TotalFiles, ledger)

	if d.notifier != nil {
		d.notifier.SendTriageNotification(job, ledger, duration)
	}

	return nil
}

// recordHistory appends the run to the history store when enabled
func (d *Daemon) recordHistory(cfg *config.Config, startedAt time.Time, scanned int, ledger *executor.Ledger) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		d.logger.Error("Failed to open history store: %v", err)
		return
	}
	defer store.Close()

	if _, err := store.RecordRun(startedAt, cfg.Strategy.Provider, scanned, cfg.DryRun, ledger); err != nil {
		d.logger.Error("Failed to record run history: %v", err)
	}
}

// createJobConfig creates a config for a specific job
func (d *Daemon) createJobConfig(job *TriageJob) *config.Config {
	cfg := *d.config

	if job.Provider != "" {
		cfg.Strategy.Provider = job.Provider
	}
	if job.DryRun {
		cfg.DryRun = true
	}

	return &cfg
}

// setupSignalHandlers sets up signal handlers for graceful shutdown
func (d *Daemon) setupSignalHandlers() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for sig := range sigChan {
			switch sig {
			case syscall.SIGINT, syscall.SIGTERM:
				d.logger.Info("Received shutdown signal: %v", sig)
				d.Stop()
			case syscall.SIGHUP:
				d.logger.Info("Received reload signal")
			}
		}
	}()
}

// acquireLock acquires the lock file
func (d *Daemon) acquireLock() error {
	lockFile := d.lockPath()

	file, err := os.OpenFile(lockFile, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("daemon already running (lock file exists)")
		}
		return err
	}

	_, err = fmt.Fprintf(file, "%d\n", os.Getpid())
	file.Close()
	return err
}

// releaseLock releases the lock file
func (d *Daemon) releaseLock() error {
	return os.Remove(d.lockPath())
}

func (d *Daemon) lockPath() string {
	if d.config.Daemon.PidFile == "" {
		return "/var/run/desk-triage.lock"
	}
	return d.config.Daemon.PidFile + ".lock"
}

func (d *Daemon) pidPath() string {
	if d.config.Daemon.PidFile == "" {
		return "/var/run/desk-triage.pid"
	}
	return d.config.Daemon.PidFile
}

// writePidFile writes the PID file
func (d *Daemon) writePidFile() error {
	return os.WriteFile(d.pidPath(), []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}

// removePidFile removes the PID file
func (d *Daemon) removePidFile() error {
	return os.Remove(d.pidPath())
}

// Logger provides leveled logging for the daemon
type Logger struct {
	logger   *log.Logger
	logLevel string
	file     *os.File
}

// NewLogger creates a new logger writing to logFile, or stdout when empty
func NewLogger(logFile, logLevel string) (*Logger, error) {
	var file *os.File
	var err error

	if logFile != "" {
		file, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
	}

	var logger *log.Logger
	if file != nil {
		logger = log.New(file, "", log.LstdFlags)
	} else {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	}

	return &Logger{
		logger:   logger,
		logLevel: logLevel,
		file:     file,
	}, nil
}

// Std returns the underlying standard logger for components that take one
func (l *Logger) Std() *log.Logger {
	return l.logger
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Printf("[INFO] "+format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Printf("[ERROR] "+format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logger.Printf("[WARN] "+format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logLevel == "debug" {
		l.logger.Printf("[DEBUG] "+format, args...)
	}
}

// Close closes the logger
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
