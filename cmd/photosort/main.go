package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"photosort/internal/app"
	"photosort/internal/config"
	"photosort/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a PhotosortApp. The caller must close it.
// operation identifies the CLI command being run (e.g. "scan", "plan").
func newApp(operation string) (*app.PhotosortApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewPhotosortApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// withApp runs fn against a new app and reports errors from both fn and
// Close, which is where the catalog snapshot is taken.
func withApp(operation string, fn func(a *app.PhotosortApp) error) error {
	a, err := newApp(operation)
	if err != nil {
		return err
	}
	return errors.Join(fn(a), a.Close())
}

// interruptible returns a context cancelled on Ctrl-C.
func interruptible(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

var rootCmd = &cobra.Command{
	Use:          "photosort",
	Short:        "Plan a date-based layout for a photo and video collection",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("# Configuration from %s\n\n", defaults["config_path"])
		return (&config.Manager{}).Write(os.Stdout, cfg)
	},
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan ROOT",
	Short: "Inventory the files under ROOT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resume, _ := cmd.Flags().GetBool("resume")

		return withApp("scan", func(a *app.PhotosortApp) error {
			session, err := a.Scan(args[0], resume)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			report.NewPrinter(os.Stdout).ScanSummary(session)
			return nil
		})
	},
}

// resolve-dates command
var resolveDatesCmd = &cobra.Command{
	Use:   "resolve-dates",
	Short: "Derive dates from directory and file names",
	RunE: func(cmd *cobra.Command, args []string) error {
		reprocess, _ := cmd.Flags().GetBool("reprocess")
		batchSize, _ := cmd.Flags().GetInt("batch-size")

		return withApp("resolve-dates", func(a *app.PhotosortApp) error {
			stats, err := a.ResolveDates(reprocess, batchSize)
			if err != nil {
				return fmt.Errorf("resolving dates: %w", err)
			}
			report.NewPrinter(os.Stdout).ResolveSummary(stats)
			return nil
		})
	},
}

// extract-metadata command
var extractMetadataCmd = &cobra.Command{
	Use:   "extract-metadata",
	Short: "Read embedded capture dates and camera metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetInt64("session")
		strategy, _ := cmd.Flags().GetString("strategy")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		limit, _ := cmd.Flags().GetInt("limit")

		ctx, cancel := interruptible(cmd)
		defer cancel()

		return withApp("extract-metadata", func(a *app.PhotosortApp) error {
			stats, err := a.ExtractMetadata(ctx, sessionID, strategy, batchSize, limit)
			if stats != nil {
				report.NewPrinter(os.Stdout).ExtractionSummary(stats)
			}
			if err != nil {
				return fmt.Errorf("extracting metadata: %w", err)
			}
			return nil
		})
	},
}

// plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute destination folders and filenames",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetInt64("session")

		return withApp("plan", func(a *app.PhotosortApp) error {
			summary, err := a.Plan(sessionID)
			if err != nil {
				return fmt.Errorf("planning: %w", err)
			}
			report.NewPrinter(os.Stdout).PlanSummary(summary)
			return nil
		})
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetInt64("session")
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp("plan show", func(a *app.PhotosortApp) error {
			session, details, err := a.GetPlan(sessionID, limit)
			if err != nil {
				return err
			}
			report.NewPrinter(os.Stdout).Plan(session, details)
			return nil
		})
	},
}

// run command
var runCmd = &cobra.Command{
	Use:   "run ROOT",
	Short: "Scan ROOT, resolve dates, extract metadata and plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := interruptible(cmd)
		defer cancel()

		return withApp("run", func(a *app.PhotosortApp) error {
			res, err := a.Run(ctx, args[0])

			p := report.NewPrinter(os.Stdout)
			if res != nil && res.Session != nil {
				p.ScanSummary(res.Session)
			}
			if res != nil && res.Resolve != nil {
				p.ResolveSummary(res.Resolve)
			}
			if res != nil && res.Extraction != nil {
				p.ExtractionSummary(res.Extraction)
			}
			if res != nil && res.Plan != nil {
				p.PlanSummary(res.Plan)
			}
			return err
		})
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View scan sessions and pass coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp("status", func(a *app.PhotosortApp) error {
			statuses, err := a.GetStatus()
			if err != nil {
				return err
			}
			report.NewPrinter(os.Stdout).Status(statuses)
			return nil
		})
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp("history", func(a *app.PhotosortApp) error {
			ops, err := a.GetHistory(limit)
			if err != nil {
				return err
			}
			report.NewPrinter(os.Stdout).History(ops)
			return nil
		})
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage snapshot encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		return withApp("keys init", func(a *app.PhotosortApp) error {
			if err := a.KeysInit(passphrase); err != nil {
				return err
			}
			fmt.Println("Snapshot keys created.")
			return nil
		})
	},
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage catalog snapshots",
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Write a catalog snapshot to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		version, _ := cmd.Flags().GetInt64("version")

		return withApp("snapshot restore", func(a *app.PhotosortApp) error {
			info, err := a.RestoreSnapshot(out, version, func() (string, error) {
				return readPassphrase("Passphrase: ")
			})
			if err != nil {
				return fmt.Errorf("restoring snapshot: %w", err)
			}
			report.NewPrinter(os.Stdout).Snapshot(info, out)
			return nil
		})
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	scanCmd.Flags().Bool("resume", false, "Continue the latest interrupted scan of ROOT")

	resolveDatesCmd.Flags().Bool("reprocess", false, "Resolve files that were already resolved")
	resolveDatesCmd.Flags().Int("batch-size", 1000, "Files read per batch")

	extractMetadataCmd.Flags().Int64("session", 0, "Scan session (default: latest completed)")
	extractMetadataCmd.Flags().String("strategy", "", "full or selective (default: from config)")
	extractMetadataCmd.Flags().Int("batch-size", 0, "Files per extractor call (default: from config)")
	extractMetadataCmd.Flags().Int("limit", 0, "Maximum number of files to process")

	planCmd.Flags().Int64("session", 0, "Scan session (default: latest completed)")
	planCmd.AddCommand(planShowCmd)
	planShowCmd.Flags().Int64("session", 0, "Scan session (default: latest completed)")
	planShowCmd.Flags().Int("limit", 0, "Maximum number of folders to show")

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	keysCmd.AddCommand(keysInitCmd)

	snapshotCmd.AddCommand(snapshotRestoreCmd)
	snapshotRestoreCmd.Flags().String("out", "", "Destination file (must not exist)")
	snapshotRestoreCmd.Flags().Int64("version", 0, "Snapshot version (default: latest)")
	snapshotRestoreCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(resolveDatesCmd)
	rootCmd.AddCommand(extractMetadataCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(snapshotCmd)
}
