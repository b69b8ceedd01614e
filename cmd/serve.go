package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/api"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/db"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/grpcserver"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the sync scheduler and the gRPC health server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), !skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations at startup")
	return cmd
}

func serve(parent context.Context, migrate bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	if migrate {
		if err := db.Migrate(a.cfg.DatabaseURL, log); err != nil {
			return err
		}
	}

	// ── gRPC health ─────────────────────────────────────────────────────────
	health := grpcserver.NewServer(a.opps, log)
	health.Refresh(ctx)
	grpcLis, err := net.Listen("tcp", ":"+a.cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	go func() {
		if err := health.Serve(grpcLis); err != nil {
			log.Error("gRPC server error", zap.Error(err))
		}
	}()

	// ── Scheduler ───────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Options{
		Spec:       a.cfg.SyncCron,
		Interval:   a.cfg.SyncInterval,
		RunOnStart: a.cfg.SyncOnStartup,
		Syncer:     a.orch,
		Runs:       a.runs,
		Data:       a.opps,
		Health:     health,
		Metrics:    a.metrics,
		Log:        log,
	})
	if err := sched.Start(ctx); err != nil {
		health.Stop()
		return err
	}

	// ── HTTP server ─────────────────────────────────────────────────────────
	h := api.NewHandler(api.Options{
		Syncer:      a.orch,
		Generator:   a.gen,
		Metrics:     a.metrics.Handler(),
		Version:     version,
		FrontendURL: a.cfg.FrontendURL,
		Log:         log,
	})
	srv := &http.Server{
		Addr:        ":" + a.cfg.Port,
		Handler:     h.Router(),
		ReadTimeout: 10 * time.Second,
		// A manual sync runs inside the request.
		WriteTimeout: 15 * time.Minute,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-srvErr:
		log.Error("HTTP server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown error", zap.Error(err))
	}
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn("scheduled sync still running at shutdown")
	}
	health.Stop()

	log.Info("stopped")
	return nil
}
