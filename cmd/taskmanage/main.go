package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rajshekhar-verma01/task-manage/internal/config"
	"github.com/rajshekhar-verma01/task-manage/internal/notify"
	"github.com/rajshekhar-verma01/task-manage/internal/recurrence"
	"github.com/rajshekhar-verma01/task-manage/internal/server"
	"github.com/rajshekhar-verma01/task-manage/internal/service"
	"github.com/rajshekhar-verma01/task-manage/internal/storage"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "taskmanage: panic: %v\n", r)
			os.Exit(2)
		}
	}()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "taskmanage: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "taskmanage",
		Short:         "Personal task and blog tracker daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newMigrateCmd(&configPath))
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, recurrence sweeper and notification timers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("store close failed", "error", err)
		}
	}()

	var notifier notify.Notifier = notify.LogNotifier{Logger: logger}
	if cfg.Notify.Desktop {
		notifier = notify.DesktopNotifier{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := service.New(store, notifier, notify.NewClock(), logger)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	// SIGUSR1 suspends the notification timers, SIGUSR2 resumes them with a
	// catch-up pass. A sleep hook can send these around system suspend.
	sleepCh := make(chan os.Signal, 1)
	signal.Notify(sleepCh, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		for sig := range sleepCh {
			switch sig {
			case syscall.SIGUSR1:
				logger.Info("suspending notification timers")
				svc.Suspend()
			case syscall.SIGUSR2:
				logger.Info("resuming notification timers")
				svc.Resume()
			}
		}
	}()
	defer signal.Stop(sleepCh)

	sweeper := recurrence.NewSweeper(store, logger)
	if err := sweeper.Start(cfg.Sweep.Interval); err != nil {
		return err
	}
	defer sweeper.Stop()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(svc, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr, "backend", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func newMigrateCmd(configPath *string) *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the sqlite schema",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSQLite(*configPath, storage.MigrateUp)
		},
	})
	migrate.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSQLite(*configPath, storage.MigrateDown)
		},
	})
	return migrate
}

func withSQLite(configPath string, fn func(*sql.DB) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Storage.Backend != storage.BackendSQLite {
		return fmt.Errorf("migrate requires the sqlite backend, configured backend is %q", cfg.Storage.Backend)
	}
	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	return fn(db)
}
