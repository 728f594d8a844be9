package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"AssetSentinel/internal/notifier"
	"AssetSentinel/internal/scheduler"
	"AssetSentinel/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr       string
		runOnStart bool
		noHTTP     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler, Telegram bot and JSON API",
		Long: `Start the long-running daemon:
  - cron refresh of every asset forecast
  - ledger reminders for entries that are due or overdue
  - Telegram command polling (when a bot token is configured)
  - the JSON API for ledger, forecasts and style settings

Examples:
  sentinel serve                  # start with the config file settings
  sentinel serve --addr :9090     # listen on another port
  sentinel serve --run-on-start   # refresh once immediately`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if os.Getenv("RUN_ON_START") == "true" {
				runOnStart = true
			}
			return runServe(cmd, a, runOnStart, noHTTP)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run the refresh task immediately (env RUN_ON_START=true)")
	cmd.Flags().BoolVar(&noHTTP, "no-http", false, "do not start the JSON API")
	return cmd
}

func runServe(cmd *cobra.Command, a *app, runOnStart, noHTTP bool) error {
	ctx := cmd.Context()
	log := a.log
	log.Info("AssetSentinel starting")

	if _, err := a.migrateSession(); err != nil {
		log.WithError(err).Warn("session migration failed")
	}

	fc, err := a.forecaster()
	if err != nil {
		return err
	}
	lm := a.ledger()

	var n notifier.Notifier = notifier.NoopNotifier{}
	var tn *notifier.TelegramNotifier
	if a.cfg.Telegram.Enabled() {
		tn = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Market.Proxy, log)
		n = tn
	} else {
		log.Info("telegram not configured, notifications disabled")
	}

	sched := scheduler.NewScheduler(ctx, fc, lm, n, log)
	sched.ReminderWindow = a.cfg.Ledger.ReminderWindow
	sched.Currency = a.currency()
	if err := sched.RegisterAll(a.cfg.Schedule.RefreshCron, a.cfg.Schedule.ReminderCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	if runOnStart {
		log.Info("running refresh task now")
		go sched.RunRefreshNow()
	}

	if noHTTP {
		log.Info("AssetSentinel is running, press Ctrl+C to stop")
		<-ctx.Done()
	} else {
		srv := server.New(a.cfg.Server, server.Deps{
			Ledger:     lm,
			Forecaster: fc,
			Settings:   a.store,
		}, log)
		if err := srv.Run(ctx); err != nil {
			return err
		}
	}

	log.Info("shutdown signal received, stopping")
	return nil
}
