package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"observability/internal/mockidp"
	"observability/internal/platform/server"
)

func main() {
	addr := envOr("IDENTITY_ADDR", ":8081")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	idp, err := mockidp.New(
		envOr("IDENTITY_CLIENT_ID", "observability-client"),
		envOr("IDENTITY_CLIENT_SECRET", "observability-secret"),
	)
	if err != nil {
		slog.Error("creating mock identity provider", "error", err)
		os.Exit(1)
	}
	// Any code is redeemable so a browser login can be faked by hand.
	idp.AcceptAnyCode = true
	idp.RedirectURI = os.Getenv("IDENTITY_REDIRECT_URI")

	slog.Info("mock identity service starting",
		"addr", addr,
		"kid", idp.Kid,
		"client_id", idp.ClientID,
	)

	srv := server.New(addr, idp.Handler(), server.WithLogger(logger))
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
