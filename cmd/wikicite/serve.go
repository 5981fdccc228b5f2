// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/wikicite/internal/cache"
	"github.com/pdiddy/wikicite/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyzer and identity cache over HTTP",
	Long: `Serve starts an HTTP server with:

  POST /v1/analyze     analyze article markup
  POST /v1/references  compute, look up or record a reference identity
  GET  /healthz        liveness
  GET  /metrics        prometheus metrics

The identity cache is opened at startup unless --no-cache is given.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().Bool("no-cache", false, "serve without an identity cache")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	noCache, _ := cmd.Flags().GetBool("no-cache")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	an, err := a.analyzer()
	if err != nil {
		return err
	}

	var c *cache.Cache
	if !noCache {
		if c, err = a.openCache(cmd.Context()); err != nil {
			return err
		}
		defer c.Close()
	}

	if !a.cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.New(server.Options{
		Analyzer:     an,
		Cache:        c,
		Logger:       a.logger.Named("http"),
		Gatherer:     a.registry,
		MaxBodyBytes: a.cfg.Server.MaxBodyBytes,
	})

	srv := &http.Server{Addr: a.cfg.Server.Addr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
	}

	a.logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
