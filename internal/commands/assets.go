package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAssetsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Inspect tracked assets",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List assets from the backend or the local assets file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			src, err := a.assetSource()
			if err != nil {
				return err
			}
			assets, err := src.ListAssets(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tQTY\tVALUE\tFEED")
			for _, as := range assets {
				feed := "-"
				switch {
				case as.CryptoID != "":
					feed = "crypto:" + as.CryptoID
				case as.TickerSymbol != "":
					feed = "ticker:" + as.TickerSymbol
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					as.ID, as.Name, as.Category, as.Quantity.String(), as.CurrentValue.StringFixed(2), feed)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "portfolio",
		Short: "Show the portfolio summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			fc, err := a.forecaster()
			if err != nil {
				return err
			}
			sum, err := fc.Portfolio(cmd.Context())
			if err != nil {
				return err
			}
			cur := a.currency()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "assets: %d\n", sum.AssetCount)
			fmt.Fprintf(w, "value:  %s %s\n", sum.TotalValue.StringFixed(2), cur)
			fmt.Fprintf(w, "cost:   %s %s\n", sum.TotalCost.StringFixed(2), cur)
			fmt.Fprintf(w, "gain:   %s %s (%s%%)\n", sum.TotalGain.StringFixed(2), cur, sum.GainPercent.StringFixed(2))
			for _, ct := range sum.ByCategory {
				fmt.Fprintf(w, "  %-15s %s (%d)\n", ct.Category, ct.Value.StringFixed(2), ct.Count)
			}
			return nil
		},
	})
	return cmd
}
