package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"observability/internal/api/adapter/idp"
	"observability/internal/apierror"
	"observability/internal/app"
	"observability/internal/authconfig"
	"observability/internal/platform/config"
	"observability/internal/platform/server"
	"observability/internal/platform/telemetry"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "observability",
		Short:         "Observability API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.ParseLevel(cfg.LogLevel)}))
			slog.SetDefault(logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	root.PersistentFlags().StringVar(&cfg.Auth.File, "auth-file", cfg.Auth.File, "deployment.yaml holding the auth configuration")
	root.PersistentFlags().StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	root.AddCommand(serveCmd, newAuthConfigCommand(&cfg))
	return root
}

func newAuthConfigCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "auth-config",
		Short: "Load the auth configuration once and print it with the password redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resolver, err := app.Resolver(ctx, cfg.Secrets, nil)
			if err != nil {
				return err
			}
			authconfig.SetSource(app.Source(cfg.Auth, resolver))

			ac, err := authconfig.GetInstance(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ac)
			return nil
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger := slog.Default()

	shutdown, err := telemetry.Setup(ctx, "observability")
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("telemetry shutdown error", "error", err)
		}
	}()

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics initialization: %w", err)
	}
	apierror.SetMetrics(metrics)

	resolver, err := app.Resolver(ctx, cfg.Secrets, metrics)
	if err != nil {
		return err
	}
	authconfig.SetSource(app.Source(cfg.Auth, resolver),
		authconfig.WithLogger(logger),
		authconfig.WithMetrics(metrics),
	)

	handler := app.NewHandler(app.Deps{
		Config:         authconfig.Default(),
		IdP:            idp.NewClient(cfg.IdPTimeout),
		Logger:         logger,
		Metrics:        metrics,
		JWKSMinRefresh: cfg.JWKSMinRefresh,
	})

	srv := server.New(cfg.Addr, handler,
		server.WithShutdownTimeout(cfg.ShutdownTimeout),
		server.WithLogger(logger),
	)

	slog.Info("observability starting",
		"addr", cfg.Addr,
		"auth_config_file", cfg.Auth.File,
		"auth_config_namespace", cfg.Auth.Namespace,
		"aws_secrets", cfg.Secrets.AWSRegion != "",
	)

	return srv.Run(ctx)
}
