/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/frametran/internal/config"
	"github.com/valpere/frametran/internal/server"
	"github.com/valpere/frametran/internal/validator"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the translation HTTP API",
	Long: `Serve the HTTP API:

  GET  /                  frame index page
  GET  /frames/{name}     frame page
  GET  /api/frames        frame names
  GET  /api/frame-info    frame summary (?path=<frame>)
  POST /api/translate     {source_text, source_language, target_language, frame_path}
  GET  /health            liveness`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine, err := newEngine(ctx)
		if err != nil {
			return err
		}

		catalog := newCatalog(false)
		if _, err := catalog.Load(cfg.Frames.Default); err != nil {
			logger.Warn("default frame is not available", zap.String("frame", cfg.Frames.Default), zap.Error(err))
		}

		srv := server.New(server.Options{
			Catalog:        catalog,
			DefaultFrame:   cfg.Frames.Default,
			Translator:     engine,
			Checker:        validator.New(),
			RequestTimeout: cfg.Server.RequestTimeout,
			Version:        version,
			Logger:         logger,
		})

		httpServer := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("server listening",
				zap.String("addr", httpServer.Addr),
				zap.String("backend", string(cfg.Model.Backend)),
				zap.String("model", cfg.Model.Model),
				zap.String("frames_dir", catalog.Dir()),
			)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			logger.Info("shutting down")
			return httpServer.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default :5000)")
	if err := v.BindPFlag(config.KeyServerAddr, serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
}
