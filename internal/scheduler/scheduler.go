package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"NepseAnalyzer/internal/analysis"
	"NepseAnalyzer/internal/metrics"
	"NepseAnalyzer/internal/model"
	"NepseAnalyzer/internal/notifier"
	"NepseAnalyzer/internal/recorder"
	"NepseAnalyzer/internal/store"
)

// Notifier delivers alert text.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs periodic watchlist refreshes and recommendation alerts.
type Scheduler struct {
	Cron      *cron.Cron
	Service   *analysis.Service
	Notifier  Notifier // nil disables alerts
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	Watchlist []string
	Ctx       context.Context

	mu   sync.Mutex
	last map[string]model.RecommendationResult
}

// NewScheduler creates a new Scheduler. Cron expressions are evaluated in
// Nepal time.
func NewScheduler(ctx context.Context, svc *analysis.Service, n Notifier, rec recorder.Recorder, watchlist []string) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	symbols := make([]string, 0, len(watchlist))
	for _, s := range watchlist {
		if s = store.NormalizeSymbol(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithLocation(model.NPT)),
		Service:   svc,
		Notifier:  n,
		Recorder:  rec,
		Watchlist: symbols,
		Ctx:       ctx,
		last:      make(map[string]model.RecommendationResult),
	}
}

// RegisterAll registers the refresh and listing tasks.
func (s *Scheduler) RegisterAll(refreshCron, listingCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if listingCron != "" {
		if _, err := s.Cron.AddFunc(listingCron, s.listingTask); err != nil {
			return fmt.Errorf("register listing task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately (for RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	if len(s.Watchlist) == 0 {
		log.Println("[INFO] refresh skipped: empty watchlist")
		return
	}
	log.Printf("[INFO] running refresh for %d symbols", len(s.Watchlist))

	res, err := s.Service.Refresh(s.Ctx, s.Watchlist, nil)
	if err != nil {
		log.Printf("[ERROR] refresh: %v", err)
		s.trySend(fmt.Sprintf("❌ Refresh failed: %v", err))
		return
	}
	if len(res.Failed) > 0 {
		s.trySend(notifier.FormatRefreshSummary(res.PricesUpdated, res.Failed))
	}

	for _, sym := range s.Watchlist {
		if _, failed := res.Failed[sym]; failed {
			continue
		}
		s.checkRecommendation(sym)
	}
}

func (s *Scheduler) listingTask() {
	if _, err := s.Service.Collector.RefreshStocks(s.Ctx); err != nil {
		log.Printf("[ERROR] listing refresh: %v", err)
	}
}

// checkRecommendation computes the symbol's recommendation and alerts when
// it differs from the previously seen one.
func (s *Scheduler) checkRecommendation(symbol string) {
	prev, hasPrev := s.previous(symbol)

	lv, err := s.Service.Latest(s.Ctx, symbol, analysis.Daily)
	if err != nil {
		log.Printf("[ERROR] analyze %s: %v", symbol, err)
		return
	}
	cur := lv.Signals

	s.mu.Lock()
	s.last[symbol] = cur
	s.mu.Unlock()

	if !hasPrev || prev.Recommendation == cur.Recommendation {
		return
	}
	log.Printf("[INFO] %s recommendation %s -> %s", symbol, prev.Recommendation, cur.Recommendation)
	if s.trySend(notifier.FormatRecommendationChange(symbol, prev, cur)) && s.Metrics != nil {
		s.Metrics.AlertsSent.Inc()
	}
}

// previous returns the last recommendation seen for symbol, falling back to
// the recorded history after a restart.
func (s *Scheduler) previous(symbol string) (model.RecommendationResult, bool) {
	s.mu.Lock()
	prev, ok := s.last[symbol]
	s.mu.Unlock()
	if ok {
		return prev, true
	}
	rec, ok, err := s.Recorder.LastRecommendation(symbol)
	if err != nil {
		log.Printf("[WARN] last recommendation %s: %v", symbol, err)
		return model.RecommendationResult{}, false
	}
	return model.RecommendationResult{Recommendation: rec}, ok
}

const helpText = "Available commands:\n" +
	"• /analyze SYMBOL - full indicator snapshot\n" +
	"• /signals SYMBOL - recommendation only\n" +
	"• /refresh [SYMBOL] - refetch prices\n" +
	"• /watchlist - symbols checked on schedule\n" +
	"• /status - market session"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	arg := ""
	if len(fields) > 1 {
		arg = store.NormalizeSymbol(fields[1])
	}

	switch cmd {
	case "/analyze":
		if arg == "" {
			return "Usage: /analyze SYMBOL"
		}
		lv, err := s.Service.Latest(ctx, arg, analysis.Daily)
		if err != nil {
			return fmt.Sprintf("❌ %s: %v", arg, err)
		}
		return notifier.FormatSnapshot(arg, lv)
	case "/signals":
		if arg == "" {
			return "Usage: /signals SYMBOL"
		}
		sig, err := s.Service.Signals(ctx, arg)
		if err != nil {
			return fmt.Sprintf("❌ %s: %v", arg, err)
		}
		return fmt.Sprintf("<b>%s</b>: %s (score %d/100)", arg, sig.Recommendation, sig.Score)
	case "/refresh":
		symbols := s.Watchlist
		if arg != "" {
			symbols = []string{arg}
		}
		res, err := s.Service.Refresh(ctx, symbols, nil)
		if err != nil {
			return fmt.Sprintf("❌ Refresh failed: %v", err)
		}
		return notifier.FormatRefreshSummary(res.PricesUpdated, res.Failed)
	case "/watchlist":
		if len(s.Watchlist) == 0 {
			return "Watchlist is empty."
		}
		return "Watchlist: " + strings.Join(s.Watchlist, ", ")
	case "/status":
		state := "closed"
		if model.IsMarketOpen(time.Now()) {
			state = "open"
		}
		return fmt.Sprintf("NEPSE market is %s (session %02d:00-%02d:00 NPT, Sun-Thu)",
			state, model.SessionOpenHour, model.SessionCloseHour)
	default:
		return helpText
	}
}

func (s *Scheduler) trySend(text string) bool {
	if s.Notifier == nil {
		log.Printf("[INFO] notification (no notifier configured): %s", text)
		return false
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
		return false
	}
	return true
}
