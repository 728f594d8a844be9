package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

type rootOptions struct {
	configPath string
	verbose    bool

	app *app
}

// load builds the shared components on first use. They are released in the
// root's PersistentPostRunE.
func (o *rootOptions) load(cmd *cobra.Command) (*app, error) {
	if o.app != nil {
		return o.app, nil
	}
	a, err := newApp(cmd.Context(), o.configPath, o.verbose)
	if err != nil {
		return nil, err
	}
	o.app = a
	return a, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sentinel",
		Short: "Personal asset tracker with value forecasts",
		Long: `AssetSentinel tracks the assets of one user, forecasts their value and
keeps a small ledger of money borrowed and lent.

The serve command runs the scheduled refresh, ledger reminders, the
Telegram bot and the JSON API. The other commands operate on the same
local state and exit.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if opts.app == nil {
				return nil
			}
			err := opts.app.Close()
			opts.app = nil
			return err
		},
	}

	defaultPath := defaultConfigPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultPath, "config file (env CONFIG_PATH)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(
		newServeCmd(opts),
		newForecastCmd(opts),
		newAssetsCmd(opts),
		newLedgerCmd(opts),
		newSessionCmd(opts),
	)
	return cmd
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
