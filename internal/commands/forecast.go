package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"AssetSentinel/internal/model"
)

func newForecastCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "forecast <assetID>",
		Short: "Forecast the value of one asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			fc, err := a.forecaster()
			if err != nil {
				return err
			}
			asset, res, err := fc.ForecastAsset(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			writeForecast(cmd.OutOrStdout(), asset, res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw forecast as JSON")
	return cmd
}

func writeForecast(w io.Writer, asset *model.Asset, res *model.ForecastResult) {
	fmt.Fprintf(w, "%s (%s)\n", asset.Name, asset.ID)
	fmt.Fprintf(w, "  current:    %.2f\n", res.CurrentPrice)
	fmt.Fprintf(w, "  predicted:  %.2f in %dd (%+.1f%%)\n", res.PredictedValue, res.HorizonDays, res.ChangePercent())
	fmt.Fprintf(w, "  confidence: %.0f%%\n", res.Confidence*100)
	fmt.Fprintf(w, "  trend:      %s, RSI %.1f, volatility %.1f%%\n", res.Features.Trend, res.Features.RSI, res.Features.Volatility)
	for _, m := range res.Models {
		fmt.Fprintf(w, "  model %-10s %.2f x%.2f\n", m.Name, m.Value, m.Weight)
	}
	if len(res.RiskFactors) > 0 {
		fmt.Fprintf(w, "  risks:      %s\n", strings.Join(res.RiskFactors, "; "))
	}
}
