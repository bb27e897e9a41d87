// browsiond runs the Browsion core service: an HTTP/WebSocket surface in
// front of a pool of CDP-controlled browser profiles.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/browsion/browsion-core/internal/config"
	"github.com/browsion/browsion-core/internal/httpapi"
	"github.com/browsion/browsion-core/internal/lifecycle"
	"github.com/browsion/browsion-core/internal/profile"
	"github.com/browsion/browsion-core/internal/redact"
	"github.com/browsion/browsion-core/internal/snapshot"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "browsiond",
	Short: "Run the Browsion browser automation core service",
	Long: `browsiond launches and attaches to Chromium-family browser profiles,
speaks the DevTools Protocol to each, and exposes navigation, interaction,
and observation as a REST and WebSocket API.

Example:
  # Run with defaults
  browsiond

  # Run against a config file, overriding the HTTP port
  browsiond --config ./browsiond.yaml --http-port 9000`,
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to a YAML config file (defaults applied where it's silent)")

	rootCmd.PersistentFlags().Int("http-port", 0, "HTTP service port (overrides config)")
	rootCmd.PersistentFlags().String("api-key", "", "required X-API-Key header value (overrides config)")
	rootCmd.PersistentFlags().Int("cdp-port-low", 0, "lowest CDP port this instance allocates (overrides config)")
	rootCmd.PersistentFlags().Int("cdp-port-high", 0, "highest CDP port this instance allocates (overrides config)")
	rootCmd.PersistentFlags().String("profiles-path", "", "path to the profile store TOML file (overrides config)")
	rootCmd.PersistentFlags().String("sessions-path", "", "path to the live-sessions JSON file (overrides config)")
	rootCmd.PersistentFlags().String("action-log-dir", "", "directory action log shards are written to (overrides config)")
	rootCmd.PersistentFlags().String("snapshots-dir", "", "directory profile snapshots are written to (overrides config)")
	rootCmd.PersistentFlags().Bool("redact", false, "enable header/body redaction in the action log (overrides config)")
	rootCmd.PersistentFlags().Bool("no-redact", false, "disable header/body redaction in the action log (overrides config)")

	rootCmd.Version = config.Version

	rootCmd.AddCommand(snapshotCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("http-port") {
		cfg.HTTPPort, _ = flags.GetInt("http-port")
	}
	if flags.Changed("api-key") {
		cfg.APIKey, _ = flags.GetString("api-key")
	}
	if flags.Changed("cdp-port-low") {
		cfg.CDPPortRangeLow, _ = flags.GetInt("cdp-port-low")
	}
	if flags.Changed("cdp-port-high") {
		cfg.CDPPortRangeHigh, _ = flags.GetInt("cdp-port-high")
	}
	if flags.Changed("profiles-path") {
		cfg.ProfilesPath, _ = flags.GetString("profiles-path")
	}
	if flags.Changed("sessions-path") {
		cfg.SessionsPath, _ = flags.GetString("sessions-path")
	}
	if flags.Changed("action-log-dir") {
		cfg.ActionLogDir, _ = flags.GetString("action-log-dir")
	}
	if flags.Changed("snapshots-dir") {
		cfg.SnapshotsDir, _ = flags.GetString("snapshots-dir")
	}
	if flags.Changed("redact") {
		cfg.Redact = true
	}
	if flags.Changed("no-redact") {
		cfg.Redact = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	profiles, err := profile.Load(cfg.ProfilesPath)
	if err != nil {
		return fmt.Errorf("load profile store: %w", err)
	}

	logCapacity := cfg.ConsoleLogCapacity
	if cfg.NetworkLogCapacity > logCapacity {
		logCapacity = cfg.NetworkLogCapacity
	}
	redactor := redact.NewWithCustomRules(cfg.Redact, cfg.RedactExtraHeaders, cfg.RedactExtraFields)
	manager := lifecycle.New(profiles, cfg.CDPPortRangeLow, cfg.CDPPortRangeHigh, time.Duration(cfg.CommandTimeout), time.Duration(cfg.LaunchProbeWait), logCapacity, cfg.SessionsPath, redactor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := manager.Restore(ctx); err != nil {
		log.Printf("restore live sessions: %v", err)
	}

	server := httpapi.New(cfg, profiles, manager, redactor)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("received shutdown signal...")
		cancel()
	}()

	log.Printf("browsiond %s", config.Version)
	log.Printf("http port: %d", cfg.HTTPPort)
	log.Printf("cdp port range: %d-%d", cfg.CDPPortRangeLow, cfg.CDPPortRangeHigh)
	log.Printf("profiles: %s", cfg.ProfilesPath)

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Create, list, and delete profile user-data-directory snapshots",
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create <profile-id>",
	Short: "Snapshot a profile's user-data directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		profiles, err := profile.Load(cfg.ProfilesPath)
		if err != nil {
			return fmt.Errorf("load profile store: %w", err)
		}
		p, ok := profiles.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown profile %q", args[0])
		}
		name := time.Now().UTC().Format("20060102T150405Z")
		m, err := snapshot.Create(cfg.SnapshotsDir, p.ID, name, p.UserDataDir)
		if err != nil {
			return err
		}
		fmt.Printf("created %s/%s (%d bytes)\n", p.ID, m.Name, m.TotalBytes)
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list <profile-id>",
	Short: "List snapshots for a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		manifests, err := snapshot.List(cfg.SnapshotsDir, args[0])
		if err != nil {
			return err
		}
		for _, m := range manifests {
			fmt.Printf("%s\t%s\t%d bytes\n", m.Name, m.CreatedAt.Format(time.RFC3339), m.TotalBytes)
		}
		return nil
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <profile-id> <name>",
	Short: "Delete one snapshot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := snapshot.Delete(cfg.SnapshotsDir, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("deleted %s/%s\n", args[0], args[1])
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotCreateCmd, snapshotListCmd, snapshotDeleteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
