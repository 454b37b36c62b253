package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/dost-companion/internal/config"
	"github.com/PabloGalante/dost-companion/internal/observability"
)

var version = "dev"

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "dost-api",
		Short:         "Dost emotional-support companion backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a config file (default ./dost.yaml if present)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	var tone string
	triageCmd := &cobra.Command{
		Use:   "triage [message]",
		Short: "Classify one message and print the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			observability.Configure(os.Stderr, cfg.LogLevel)

			app, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			result := app.triage.Triage(cmd.Context(), strings.Join(args, " "), nil, tone)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	triageCmd.Flags().StringVar(&tone, "tone", "friendly", "reply tone: calm, friendly or minimal")

	rootCmd.AddCommand(serveCmd, triageCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	observability.Configure(os.Stdout, cfg.LogLevel)
	log := observability.Logger()

	app, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Dost API listening", "port", cfg.Port, "storage", cfg.StorageBackend, "primary", cfg.AI.Primary)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
