// ABOUTME: Root cobra command and shared setup for groupsync subcommands
// ABOUTME: Loads config, builds the logger, and opens the history database
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/groupsync/config"
	"github.com/harperreed/groupsync/db"
	"github.com/harperreed/groupsync/logger"
	"github.com/harperreed/groupsync/metrics"
	"github.com/harperreed/groupsync/sync"
	"google.golang.org/api/option"
)

var (
	cfgFile string
	dbPath  string

	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "groupsync",
	Short: "Sync Planning Center lists into Google Groups",
	Long: `groupsync keeps Google Workspace group memberships in line with
Planning Center People lists. Each configured list email is both the
Planning Center list name and the Google group key.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "groupsync version %s\n", version)
		if commit != "unknown" {
			_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
		}
		if buildTime != "unknown" {
			_, _ = fmt.Fprintf(out, "  built:  %s\n", buildTime)
		}
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: $XDG_CONFIG_HOME/groupsync/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "sync history database path (default: $XDG_DATA_HOME/groupsync/groupsync.db)")

	RootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		l, logErr := logger.New(&logger.Config{Level: "info", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

// app bundles what every command that talks to the APIs needs.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	db     *sql.DB
	dbPath string
}

// loadApp loads and validates config, builds the logger, and opens the history database.
func loadApp() (*app, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath(), err)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	path := dbPath
	if path == "" {
		path = cfg.Database.Path
	}
	if path == "" {
		path = db.DefaultPath()
	}

	database, err := db.OpenDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Debug("opened sync history", zap.String("path", path))

	return &app{cfg: cfg, log: log, db: database, dbPath: path}, nil
}

func (a *app) Close() {
	_ = a.log.Sync()
	_ = a.db.Close()
}

func (a *app) planningCenter() *sync.PlanningCenterClient {
	opts := []sync.PlanningCenterOption{sync.WithPlanningCenterLogger(a.log)}
	if a.cfg.PlanningCenter.BaseURL != "" {
		opts = append(opts, sync.WithBaseURL(a.cfg.PlanningCenter.BaseURL))
	}
	return sync.NewPlanningCenterClient(a.cfg.PlanningCenter.AppID, a.cfg.PlanningCenter.Secret, opts...)
}

func (a *app) directory(ctx context.Context) (*sync.DirectoryClient, error) {
	ts, err := sync.TokenSource(ctx, sync.NewOAuthConfig(a.cfg.GoogleAuth()))
	if err != nil {
		return nil, fmt.Errorf("no usable Google token, run 'groupsync sync configure' first: %w", err)
	}
	return sync.NewDirectoryClient(ctx, option.WithTokenSource(ts))
}

// syncer wires Planning Center, static contacts, and the Directory API together.
func (a *app) syncer(ctx context.Context, dryRun bool) (*sync.ListSyncer, error) {
	directory, err := a.directory(ctx)
	if err != nil {
		return nil, err
	}

	return &sync.ListSyncer{
		Source:      a.planningCenter(),
		Static:      sync.NewStaticContacts(a.cfg.StaticContacts),
		Destination: directory,
		DB:          a.db,
		Metrics:     metrics.New(),
		Logger:      a.log,
		DryRun:      dryRun,
	}, nil
}

// writeMetrics writes the run metrics textfile when one is configured.
func (a *app) writeMetrics(m *metrics.Metrics) {
	if a.cfg.Metrics.Textfile == "" || m == nil {
		return
	}
	if err := m.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		a.log.Warn("failed to write metrics textfile", zap.String("path", a.cfg.Metrics.Textfile), zap.Error(err))
	}
}
