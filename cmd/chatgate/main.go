// Command chatgate runs the multi-session chat-automation gateway: an HTTP
// API in front of the session registry, backed by a browser-automation
// sidecar for the actual messaging transport.
//
// Run:
//
//	chatgate serve --config /etc/chatgate/config.yaml
//
// The PORT environment variable overrides the configured listen port and
// defaults to 3000.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	chatgate "github.com/chatgate-io/chatgate"
	"github.com/chatgate-io/chatgate/client/wwebjs"
	"github.com/chatgate-io/chatgate/httpapi"
)

func main() {
	root := &cobra.Command{
		Use:           "chatgate",
		Short:         "Multi-session chat-automation gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "chatgate:", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")

	return cmd
}

func serve(ctx context.Context, configPath string) error {
	cfg, fc, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	sidecarURL := fc.Sidecar.URL
	if sidecarURL == "" {
		sidecarURL = "ws://localhost:8466"
	}
	factory, err := wwebjs.NewFactory(wwebjs.Config{
		BaseURL:          sidecarURL,
		HandshakeTimeout: fc.Sidecar.HandshakeTimeout,
	})
	if err != nil {
		return err
	}

	builder := chatgate.New().
		WithConfig(cfg).
		WithClientFactory(factory).
		WithAuditSink(chatgate.NewJSONWriterSink(os.Stdout))

	if fc.Redis.Addr != "" {
		builder = builder.WithRedis(redis.NewClient(&redis.Options{
			Addr:     fc.Redis.Addr,
			Password: fc.Redis.Password,
			DB:       fc.Redis.DB,
		}))
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	api := httpapi.New(engine, cfg)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fmt.Fprintf(os.Stderr, "chatgate: listening on :%d\n", cfg.Server.Port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
