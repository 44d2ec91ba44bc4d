package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"NepseAnalyzer/internal/notifier"
	"NepseAnalyzer/internal/scheduler"
)

func serveCmd() *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the refresh scheduler and Telegram polling",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(runOnStart || os.Getenv("RUN_ON_START") == "true")
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Refresh the watchlist immediately")
	return cmd
}

func runServe(runOnStart bool) error {
	log.Println("[INFO] NepseAnalyzer starting...")
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		log.Println("[WARN] telegram not configured, alerts are logged only")
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, a.svc, n, a.rec, cfg.Watchlist)
	sched.Metrics = a.metrics
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ListingCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	if runOnStart {
		log.Println("[INFO] run-on-start enabled, refreshing watchlist now")
		go sched.RunRefreshNow()
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           a.apiServer().Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] HTTP API listening on %s", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Println("[INFO] NepseAnalyzer is running. Press Ctrl+C to stop.")
	select {
	case <-ctx.Done():
		log.Println("[INFO] shutdown signal received, stopping...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] NepseAnalyzer stopped")
	return nil
}
