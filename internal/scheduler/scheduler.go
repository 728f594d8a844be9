package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"AssetSentinel/internal/ledger"
	"AssetSentinel/internal/logger"
	"AssetSentinel/internal/model"
	"AssetSentinel/internal/notifier"
	"AssetSentinel/internal/service"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron           *cron.Cron
	Forecaster     *service.Forecaster
	Ledger         *ledger.Manager
	Notifier       notifier.Notifier
	ReminderWindow time.Duration
	Currency       string
	Ctx            context.Context

	log *logrus.Entry
	now func() time.Time
}

// NewScheduler creates a new Scheduler. A nil notifier drops messages.
func NewScheduler(ctx context.Context, fc *service.Forecaster, lm *ledger.Manager, n notifier.Notifier, log *logrus.Logger) *Scheduler {
	if n == nil {
		n = notifier.NoopNotifier{}
	}
	return &Scheduler{
		Cron:           cron.New(cron.WithSeconds()),
		Forecaster:     fc,
		Ledger:         lm,
		Notifier:       n,
		ReminderWindow: 72 * time.Hour,
		Currency:       model.DefaultSettings().Currency,
		Ctx:            ctx,
		log:            logger.WithComponent(log, "scheduler"),
		now:            time.Now,
	}
}

// RegisterAll registers the refresh and reminder tasks.
func (s *Scheduler) RegisterAll(refreshCron, reminderCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reminderCron, s.reminderTask); err != nil {
		return fmt.Errorf("register reminder task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately.
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	s.log.Info("running refresh task")
	outcomes, err := s.Forecaster.Refresh(s.Ctx)
	if err != nil {
		s.log.WithError(err).Error("refresh")
		s.trySend(fmt.Sprintf("❌ Refresh failed: %s", html.EscapeString(err.Error())))
		return
	}

	var reports []string
	for _, o := range outcomes {
		if o.Err != nil {
			reports = append(reports, fmt.Sprintf("❌ <b>%s</b>: %s", html.EscapeString(o.Asset.Name), html.EscapeString(o.Err.Error())))
			continue
		}
		reports = append(reports, notifier.FormatForecastReport(&o.Asset, o.Result))
	}
	if sum, err := s.Forecaster.Portfolio(s.Ctx); err == nil {
		reports = append(reports, notifier.FormatPortfolioSummary(sum, s.Currency))
	} else {
		s.log.WithError(err).Warn("portfolio summary")
	}
	if len(reports) == 0 {
		return
	}
	s.trySend(strings.Join(reports, "\n\n"))
}

func (s *Scheduler) reminderTask() {
	if s.Ledger == nil {
		return
	}
	now := s.now()
	reminders, err := s.Ledger.DueReminders(now, s.ReminderWindow)
	if err != nil {
		s.log.WithError(err).Error("load ledger reminders")
		return
	}
	s.log.WithField("count", len(reminders)).Info("ledger reminders checked")
	if msg := notifier.FormatLedgerReminders(reminders, now); msg != "" {
		s.trySend(msg)
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// commands may arrive as /cmd@BotName in group chats
	name, _, _ := strings.Cut(fields[0], "@")

	switch name {
	case "/forecast":
		if len(fields) < 2 {
			return "Usage: /forecast &lt;assetId&gt;"
		}
		asset, res, err := s.Forecaster.ForecastAsset(ctx, fields[1])
		if err != nil {
			if errors.Is(err, service.ErrAssetNotFound) {
				return fmt.Sprintf("Unknown asset %s", html.EscapeString(fields[1]))
			}
			s.log.WithError(err).Warn("forecast command")
			return fmt.Sprintf("❌ Forecast failed: %s", html.EscapeString(err.Error()))
		}
		return notifier.FormatForecastReport(asset, res)
	case "/portfolio":
		sum, err := s.Forecaster.Portfolio(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Portfolio unavailable: %s", html.EscapeString(err.Error()))
		}
		return notifier.FormatPortfolioSummary(sum, s.Currency)
	case "/ledger":
		if s.Ledger == nil {
			return "Ledger is not configured"
		}
		borrowed, err := s.Ledger.Outstanding(model.LedgerBorrowed)
		if err != nil {
			return fmt.Sprintf("❌ Ledger unavailable: %s", html.EscapeString(err.Error()))
		}
		lent, err := s.Ledger.Outstanding(model.LedgerLent)
		if err != nil {
			return fmt.Sprintf("❌ Ledger unavailable: %s", html.EscapeString(err.Error()))
		}
		return notifier.FormatLedgerOverview(borrowed, lent)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Notify(s.Ctx, text); err != nil {
		s.log.WithError(err).Error("send notification")
	}
}
