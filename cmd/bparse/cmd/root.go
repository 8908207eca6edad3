/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/byteparser/pkg/config"
	"github.com/ssargent/byteparser/pkg/decl"
	"github.com/ssargent/byteparser/pkg/metrics"
	"github.com/ssargent/byteparser/pkg/schema"
	"github.com/ssargent/byteparser/pkg/storage"
)

// app carries the state shared by all commands
type app struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	catalog *decl.Catalog
}

type appKey struct{}

// declarations returns the record catalog, loading the declaration file
// on first use
func (a *app) declarations() (*decl.Catalog, error) {
	if a.catalog == nil {
		cat, err := decl.LoadFile(a.config.Schemas)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("loaded declarations", "file", a.config.Schemas, "records", cat.Len())
		a.catalog = cat
	}
	return a.catalog, nil
}

// schema returns the declared record called name
func (a *app) schema(name string) (*schema.Schema, error) {
	cat, err := a.declarations()
	if err != nil {
		return nil, err
	}
	return cat.Lookup(name)
}

// openArchive opens the record archive under the data directory
func (a *app) openArchive() (*storage.Archive, error) {
	return storage.Open(storage.Options{
		Path:      filepath.Join(a.config.DataDir, "archive"),
		CacheSize: a.config.Storage.CacheSize,
		Sync:      a.config.Storage.Sync,
		Logger:    a.logger,
		Metrics:   a.metrics,
	})
}

func appFrom(cmd *cobra.Command) (*app, error) {
	a, ok := cmd.Context().Value(appKey{}).(*app)
	if !ok {
		return nil, errors.New("command context not initialized")
	}
	return a, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bparse",
	Short: "bparse - declarative binary record reader and writer",
	Long: `bparse reads and writes binary records described by declaration
files. Each record is an ordered list of named fields (fixed-width and
base-128 integers, sized or terminated strings) declared in YAML or HCL.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := cfg.Logging.NewLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(context.WithValue(ctx, appKey{}, &app{
			config:  cfg,
			logger:  logger,
			metrics: metrics.NewMetrics(),
		}))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		if a.config.Metrics.File == "" {
			return nil
		}
		return a.metrics.WriteFile(a.config.Metrics.File)
	},
}

// loadConfig reads the config file, if any, and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	explicit := flags.Changed("config")
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if explicit || config.ConfigExists(path) {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			// init creates the file named by --config.
			if !explicit || cmd.Name() != "init" {
				return nil, err
			}
		} else {
			cfg = loaded
		}
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"data-dir", &cfg.DataDir},
		{"schemas", &cfg.Schemas},
		{"log-level", &cfg.Logging.Level},
		{"log-format", &cfg.Logging.Format},
		{"metrics-file", &cfg.Metrics.File},
	}
	for _, o := range overrides {
		if flags.Changed(o.flag) {
			v, err := flags.GetString(o.flag)
			if err != nil {
				return nil, fmt.Errorf("invalid --%s: %w", o.flag, err)
			}
			*o.target = v
		}
	}
	return cfg, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Config file (default ~/.config/bparse/config.yaml)")
	flags.StringP("data-dir", "d", "./data", "Data directory for the record archive")
	flags.StringP("schemas", "s", "./schemas.yaml", "Record declaration file (.yaml, .yml or .hcl)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file on exit")
}
