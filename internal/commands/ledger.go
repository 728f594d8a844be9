package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"AssetSentinel/internal/model"
)

const dateLayout = "2006-01-02"

func newLedgerCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Manage money borrowed and lent",
		Long: `Manage the borrowed and lent collections. <kind> is one of
borrowed (borrow) or lent (lend).`,
	}
	cmd.AddCommand(
		newLedgerAddCmd(opts),
		newLedgerListCmd(opts),
		newLedgerDoneCmd(opts),
		newLedgerDeleteCmd(opts),
		newLedgerExportCmd(opts),
	)
	return cmd
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

func newLedgerAddCmd(opts *rootOptions) *cobra.Command {
	var (
		id, amount, purpose, counterparty string
		start, end, link                  string
		reminder                          bool
	)

	cmd := &cobra.Command{
		Use:   "add <kind>",
		Short: "Add an entry",
		Example: `  sentinel ledger add lent --amount 50 --counterparty Sam --end 2026-12-01 --reminder
  sentinel ledger add borrowed --amount 12.5 --purpose lunch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseLedgerKind(args[0])
			if err != nil {
				return err
			}
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			startDate, err := parseOptionalDate(start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			endDate, err := parseOptionalDate(end)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}

			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			saved, err := a.ledger().Add(kind, model.LedgerEntry{
				ID:           id,
				Amount:       amt,
				Purpose:      purpose,
				Counterparty: counterparty,
				StartDate:    startDate,
				EndDate:      endDate,
				Reminder:     reminder,
				PaymentLink:  link,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s entry %s\n", kind, saved.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&id, "id", "", "entry id, derived from the current time when empty")
	f.StringVar(&amount, "amount", "", "amount (required)")
	f.StringVar(&purpose, "purpose", "", "what the money was for")
	f.StringVar(&counterparty, "counterparty", "", "who the money was borrowed from or lent to")
	f.StringVar(&start, "start", "", "start date YYYY-MM-DD, defaults to today")
	f.StringVar(&end, "end", "", "due date YYYY-MM-DD")
	f.StringVar(&link, "link", "", "payment link")
	f.BoolVar(&reminder, "reminder", false, "send reminders when due")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newLedgerListCmd(opts *rootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List entries, open ones only unless --all is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseLedgerKind(args[0])
			if err != nil {
				return err
			}
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			lm := a.ledger()
			entries, err := lm.List(kind)
			if err != nil {
				return err
			}
			now := time.Now()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tAMOUNT\tCOUNTERPARTY\tPURPOSE\tDUE\tSTATUS")
			for _, e := range entries {
				if e.Done && !all {
					continue
				}
				due := "-"
				if !e.EndDate.IsZero() {
					due = e.EndDate.Format(dateLayout)
				}
				status := "open"
				switch {
				case e.Done:
					status = "done"
				case e.Overdue(now):
					status = "overdue"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Amount.StringFixed(2), e.Counterparty, e.Purpose, due, status)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			total, err := lm.Outstanding(kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "outstanding: %s\n", total.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include settled entries")
	return cmd
}

func newLedgerDoneCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "done <kind> <id>",
		Short: "Mark an entry as settled",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseLedgerKind(args[0])
			if err != nil {
				return err
			}
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := a.ledger().MarkDone(kind, args[1]); err != nil {
				return fmt.Errorf("%s %s: %w", kind, args[1], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "marked %s entry %s as done\n", kind, args[1])
			return nil
		},
	}
}

func newLedgerDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseLedgerKind(args[0])
			if err != nil {
				return err
			}
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := a.ledger().Delete(kind, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s entry %s\n", kind, args[1])
			return nil
		},
	}
}

func newLedgerExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Export both collections to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[0], err)
			}
			if err := a.ledger().ExportXLSX(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported ledger to %s\n", args[0])
			return nil
		},
	}
}
