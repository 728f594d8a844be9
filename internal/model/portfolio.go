package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the share of a portfolio held in one category.
type CategoryTotal struct {
	Category AssetCategory   `json:"category"`
	Value    decimal.Decimal `json:"value"`
	Count    int             `json:"count"`
}

// PortfolioSummary aggregates all assets of a user.
type PortfolioSummary struct {
	TotalValue  decimal.Decimal `json:"totalValue"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	TotalGain   decimal.Decimal `json:"totalGain"`
	GainPercent decimal.Decimal `json:"gainPercent"`
	AssetCount  int             `json:"assetCount"`
	ByCategory  []CategoryTotal `json:"byCategory"`
}

// Summarize computes a portfolio summary from a list of assets. Value is
// currentValue × quantity, cost is purchasePrice × quantity; a zero quantity
// counts as one unit.
func Summarize(assets []Asset) PortfolioSummary {
	sum := PortfolioSummary{AssetCount: len(assets)}
	byCat := make(map[AssetCategory]*CategoryTotal)

	for _, a := range assets {
		qty := a.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		value := a.CurrentValue.Mul(qty)
		cost := a.PurchasePrice.Mul(qty)
		sum.TotalValue = sum.TotalValue.Add(value)
		sum.TotalCost = sum.TotalCost.Add(cost)

		ct, ok := byCat[a.Category]
		if !ok {
			ct = &CategoryTotal{Category: a.Category}
			byCat[a.Category] = ct
		}
		ct.Value = ct.Value.Add(value)
		ct.Count++
	}

	sum.TotalGain = sum.TotalValue.Sub(sum.TotalCost)
	if !sum.TotalCost.IsZero() {
		sum.GainPercent = sum.TotalGain.Div(sum.TotalCost).Mul(decimal.NewFromInt(100)).Round(2)
	}

	for _, ct := range byCat {
		sum.ByCategory = append(sum.ByCategory, *ct)
	}
	sort.Slice(sum.ByCategory, func(i, j int) bool {
		return sum.ByCategory[i].Value.GreaterThan(sum.ByCategory[j].Value)
	})
	return sum
}
