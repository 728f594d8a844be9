package commands

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"AssetSentinel/internal/api"
	"AssetSentinel/internal/session"
)

func (a *app) migrateSession() (*session.MigrationReport, error) {
	report, err := session.Migrate(a.store)
	if err != nil {
		return nil, err
	}
	if !report.AlreadyCurrent {
		a.log.WithField("migrated", len(report.Migrated)).WithField("removed", len(report.Removed)).Info("session schema migrated")
	}
	return report, nil
}

func newSessionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage the stored login session",
	}
	cmd.AddCommand(
		newSessionStatusCmd(opts),
		newSessionLoginCmd(opts),
		newSessionMigrateCmd(opts),
		newSessionVerifyCmd(opts),
		newSessionLogoutCmd(opts),
		newTwoFactorCmd(opts),
	)
	return cmd
}

func newSessionStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored and if 2FA is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			acc := a.session()
			w := cmd.OutOrStdout()
			if !acc.IsAuthenticated() {
				fmt.Fprintln(w, "not logged in")
				return nil
			}
			fmt.Fprintln(w, "logged in")
			fmt.Fprintf(w, "  tenant: %s\n", orDash(acc.TenantID()))
			fmt.Fprintf(w, "  user:   %s\n", orDash(acc.UserID()))
			last, ok := acc.LastTwoFactorVerification()
			if ok {
				fmt.Fprintf(w, "  2fa:    verified %s\n", last.Format(time.RFC3339))
			} else {
				fmt.Fprintln(w, "  2fa:    never verified")
			}
			if acc.NeedsTwoFactor(time.Now(), a.cfg.Security.TwoFactorWindow) {
				fmt.Fprintln(w, "  2fa verification required")
			}
			return nil
		},
	}
}

func newSessionLoginCmd(opts *rootOptions) *cobra.Command {
	var (
		creds    session.Credentials
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a token obtained from the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := a.session().SetCredentials(creds, remember); err != nil {
				return err
			}
			if !remember {
				fmt.Fprintln(cmd.OutOrStdout(), "session stored for this process only")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "session stored")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&creds.Token, "token", "", "bearer token (required)")
	f.StringVar(&creds.TenantID, "tenant", "", "tenant id")
	f.StringVar(&creds.UserID, "user", "", "user id, read from the token when empty")
	f.BoolVar(&remember, "remember", true, "persist the session")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newSessionMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite legacy session keys into the current schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			report, err := a.migrateSession()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if report.AlreadyCurrent {
				fmt.Fprintln(w, "session schema is current")
				return nil
			}
			keys := make([]string, 0, len(report.Migrated))
			for k := range report.Migrated {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "%s <- %s\n", k, report.Migrated[k])
			}
			fmt.Fprintf(w, "migrated %d keys, removed %d legacy keys\n", len(report.Migrated), len(report.Removed))
			return nil
		},
	}
}

func newSessionVerifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <code>",
		Short: "Verify a two-factor code with the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			client, err := a.backend()
			if err != nil {
				return err
			}
			ok, err := client.TwoFactorVerify(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("code rejected")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "two-factor verification recorded")
			return nil
		},
	}
}

// backend returns the API client or an error when no backend is configured.
func (a *app) backend() (*api.Client, error) {
	client := a.apiClient()
	if client == nil {
		return nil, errors.New("api.base_url is not configured")
	}
	return client, nil
}

func newTwoFactorCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "2fa",
		Short: "Enroll, inspect or remove the second factor on the backend",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "setup",
		Short: "Enroll a new authenticator and print its secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			client, err := a.backend()
			if err != nil {
				return err
			}
			setup, err := client.TwoFactorSetup(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "secret:  %s\n", setup.Secret)
			if setup.QRCode != "" {
				fmt.Fprintf(w, "qr code: %s\n", setup.QRCode)
			}
			for _, code := range setup.BackupCodes {
				fmt.Fprintf(w, "backup:  %s\n", code)
			}
			fmt.Fprintln(w, "confirm with: sentinel session verify <code>")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "disable <code>",
		Short: "Remove the second factor, confirmed by a current code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			client, err := a.backend()
			if err != nil {
				return err
			}
			if err := client.TwoFactorDisable(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "two-factor authentication disabled")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Ask the backend whether a second factor is enrolled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			client, err := a.backend()
			if err != nil {
				return err
			}
			status, err := client.TwoFactorStatus(cmd.Context())
			if err != nil {
				return err
			}
			if status.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "two-factor authentication enabled")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "two-factor authentication disabled")
			}
			return nil
		},
	})
	return cmd
}

func newSessionLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		Long: `Sign out. The backend is told first when one is configured; a failure
there is reported but the local session is cleared regardless. Ledger data
is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			acc := a.session()
			if client := a.apiClient(); client != nil && acc.IsAuthenticated() {
				if err := client.Logout(cmd.Context()); err != nil {
					a.log.WithError(err).Warn("server logout failed, clearing local session anyway")
				}
			}
			if err := acc.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
