package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/desk-triage/internal/config"
	"github.com/fenilsonani/desk-triage/internal/executor"
	"github.com/fenilsonani/desk-triage/internal/history"
	"github.com/fenilsonani/desk-triage/internal/progress"
	"github.com/fenilsonani/desk-triage/internal/reporter"
	"github.com/fenilsonani/desk-triage/internal/scanner"
	"github.com/fenilsonani/desk-triage/internal/strategy"
	"github.com/fenilsonani/desk-triage/internal/triage"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	configPath   string
	verbose      bool
	dryRun       bool
	force        bool
	provider     string
	outputFmt    string
	historyLimit int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Intelligent desktop file triage",
	Long: `Desk Triage scans cluttered folders such as the desktop and downloads,
classifies every file with a remote AI model or an offline rule engine,
and sorts them: junk deleted (with backup), keepers archived into
category folders.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the configured folders",
	Long:  `Scans the configured folders and reports what was found without classifying anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		scnr := scanner.New(&cfg.Scan, nil)

		fmt.Println("Scanning...")
		files := scnr.Scan(scanProgress(cfg))
		stats := scnr.GetStatistics()

		fmt.Printf("\nFound %d files (%.2f MB)\n", stats.TotalFiles, stats.TotalSizeMB)
		for ext, count := range stats.FileTypes {
			fmt.Printf("  %s: %d\n", ext, count)
		}

		if len(files) == 0 {
			fmt.Println("\nNothing to triage. Your folders are already tidy!")
		}
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Classify files and show the plan without touching anything",
	Long:  `Scans and classifies the configured folders, then prints the suggested actions. No files are moved or deleted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		result, stats, err := runTriage(cfg)
		if err != nil {
			return err
		}

		rptr := reporter.New(os.Stdout, outputFormat())
		return rptr.ReportTriage(result, stats)
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Classify files and execute the suggested actions",
	Long:  `Scans, classifies and then executes the plan: deletes junk (with backup when enabled) and moves files into category folders.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("dry-run") {
			cfg.DryRun = dryRun
		}

		started := time.Now()
		result, stats, err := runTriage(cfg)
		if err != nil {
			return err
		}

		if len(result.Suggestions) == 0 {
			fmt.Println("No suggestions produced. Nothing to do.")
			return nil
		}

		rptr := reporter.New(os.Stdout, reporter.FormatSummary)
		if err := rptr.ReportTriage(result, stats); err != nil {
			return err
		}

		if !force && !cfg.DryRun {
			fmt.Print("\nProceed with these actions? (y/N): ")
			var response string
			fmt.Scanln(&response)
			if response != "y" && response != "Y" {
				fmt.Println("Cancelled")
				return nil
			}
		}

		if cfg.DryRun {
			fmt.Println("\n[DRY RUN MODE] No files will be touched.")
		} else {
			fmt.Println("\nApplying...")
		}

		exec := executor.New(cfg, nil)
		ledger := exec.Execute(result.Suggestions, func(index, total int, action strategy.Action, path string) {
			if verbose {
				fmt.Println(progress.FormatOperation(index, total, string(action), path))
			}
		})

		fmt.Println()
		if err := rptr.ReportLedger(ledger); err != nil {
			return err
		}
		fmt.Printf("Done in %s\n", progress.FormatDuration(time.Since(started)))

		recordHistory(cfg, started, stats.TotalFiles, ledger)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past triage runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if !cfg.History.Enabled {
			fmt.Println("History is disabled in the configuration.")
			return nil
		}

		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer store.Close()

		runs, err := store.ListRuns(historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		fmt.Printf("%-4s | %-19s | %-7s | %-7s | %-7s | %-5s | %-5s | %-8s | %s\n",
			"ID", "Started", "Scanned", "Deleted", "Moved", "Kept", "Fail", "Freed MB", "Mode")
		for _, r := range runs {
			mode := "apply"
			if r.DryRun {
				mode = "dry-run"
			}
			fmt.Printf("%-4d | %-19s | %-7d | %-7d | %-7d | %-5d | %-5d | %-8.2f | %s\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.ScannedCount,
				r.DeletedCount, r.MovedCount, r.KeptCount, r.FailedCount,
				r.FreedSpaceMB, mode)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display or initialize the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, err := config.GetConfigPath()
		if err != nil {
			return err
		}

		fmt.Printf("Config file: %s\n", cfgPath)

		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			fmt.Println("Config file does not exist. Using default configuration.")
			fmt.Println("\nRun 'triage config init' to create one.")
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the example configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, err := config.EnsureConfigExists()
		if err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		fmt.Printf("Configuration written to %s\n", cfgPath)
		fmt.Println("Set strategy.remote.api_key to enable the remote model.")
		return nil
	},
}

// runTriage performs the scan and classification phases shared by plan
// and apply
func runTriage(cfg *config.Config) (*strategy.Result, scanner.Statistics, error) {
	if provider != "" {
		cfg.Strategy.Provider = provider
	}

	scnr := scanner.New(&cfg.Scan, nil)

	fmt.Println("Scanning...")
	files := scnr.Scan(scanProgress(cfg))
	stats := scnr.GetStatistics()

	if len(files) == 0 {
		return strategy.EmptyResult(), stats, nil
	}

	primary, err := strategy.New(cfg.Strategy.Provider, &cfg.Strategy)
	if err != nil {
		return nil, stats, err
	}
	var fallback strategy.Strategy
	if cfg.Strategy.FallbackEnabled {
		if fallback, err = strategy.New("rules", &cfg.Strategy); err != nil {
			return nil, stats, err
		}
	}

	fmt.Printf("Classifying %d files with %s...\n", len(files), primary.Name())

	coordinator := triage.New(primary, fallback, cfg.BatchSize, nil)
	result, err := coordinator.Run(context.Background(), files, func(batch, totalBatches int, r *strategy.Result) {
		fmt.Println(progress.FormatBatch(batch, totalBatches, len(r.Suggestions)))
	})
	if err != nil {
		return nil, stats, fmt.Errorf("triage failed: %w", err)
	}

	return result, stats, nil
}

func scanProgress(cfg *config.Config) scanner.ScanFunc {
	if !cfg.Verbose && !verbose {
		return nil
	}
	return func(current, total int, path string) {
		fmt.Println(progress.FormatScan(current, total, path))
	}
}

// recordHistory appends the run to the history store when enabled
func recordHistory(cfg *config.Config, started time.Time, scanned int, ledger *executor.Ledger) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open history store: %v\n", err)
		return
	}
	defer store.Close()

	if _, err := store.RecordRun(started, cfg.Strategy.Provider, scanned, cfg.DryRun, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot record run: %v\n", err)
	}
}

func outputFormat() reporter.OutputFormat {
	switch outputFmt {
	case "json":
		return reporter.FormatJSON
	case "yaml":
		return reporter.FormatYAML
	case "table":
		return reporter.FormatTable
	default:
		return reporter.FormatSummary
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")

	planCmd.Flags().StringVar(&provider, "provider", "", "classification strategy (remote, rules)")
	planCmd.Flags().StringVar(&outputFmt, "output", "summary", "output format (summary, table, json, yaml)")

	applyCmd.Flags().StringVar(&provider, "provider", "", "classification strategy (remote, rules)")
	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would happen without touching files")
	applyCmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompts")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show")

	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	cfgPath, err := config.GetConfigPath()
	if err != nil {
		return nil, err
	}

	return config.Load(cfgPath)
}
