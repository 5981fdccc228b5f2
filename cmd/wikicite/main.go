// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wikicite CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/wikicite/internal/analyze"
	"github.com/pdiddy/wikicite/internal/cache"
	"github.com/pdiddy/wikicite/internal/config"
	"github.com/pdiddy/wikicite/internal/logging"
	"github.com/pdiddy/wikicite/internal/metrics"
	"github.com/pdiddy/wikicite/internal/secrets"
	"github.com/pdiddy/wikicite/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the wikicite CLI.
var rootCmd = &cobra.Command{
	Use:   "wikicite",
	Short: "Extract, classify and identify citations in wiki articles",
	Long: `wikicite finds the references of a wiki article, normalizes their citation
templates, classifies them, and computes identity hashes used to deduplicate
cited works across articles.

Subcommands analyze single articles or whole directories, compute identities
of individual references, administer the identity cache, and serve the same
operations over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./wikicite.yaml or ~/.config/wikicite/wikicite.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("salt", "", "identity hash namespace salt")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("analysis.identity_salt", rootCmd.PersistentFlags().Lookup("salt"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wikicite")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wikicite"))
		}
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// app bundles what every subcommand builds from configuration.
type app struct {
	cfg      types.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newApp() (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	applied := secrets.Apply(&cfg, loadedSecrets)

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	if len(applied) > 0 {
		logger.Debug("secrets applied", zap.Strings("keys", applied))
	}

	reg := prometheus.NewRegistry()
	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		metrics:  metrics.New(reg),
	}, nil
}

func (a *app) analyzer() (*analyze.Analyzer, error) {
	return analyze.New(a.cfg.Analysis,
		analyze.WithLogger(a.logger),
		analyze.WithMetrics(a.metrics),
	)
}

func (a *app) openCache(ctx context.Context) (*cache.Cache, error) {
	return cache.Open(ctx, a.cfg.Cache,
		cache.WithLogger(a.logger.Named("cache")),
		cache.WithMetrics(a.metrics),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
