package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AssetCategory classifies what an asset is.
type AssetCategory string

const (
	CategoryLand          AssetCategory = "land"
	CategoryProperty      AssetCategory = "property"
	CategoryGold          AssetCategory = "gold"
	CategoryVehicle       AssetCategory = "vehicle"
	CategoryStocks        AssetCategory = "stocks"
	CategoryCrypto        AssetCategory = "crypto"
	CategoryDigitalAssets AssetCategory = "digital_assets"
	CategoryOther         AssetCategory = "other"
)

// Categories lists every valid asset category.
var Categories = []AssetCategory{
	CategoryLand, CategoryProperty, CategoryGold, CategoryVehicle,
	CategoryStocks, CategoryCrypto, CategoryDigitalAssets, CategoryOther,
}

// Valid reports whether c is a known category.
func (c AssetCategory) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// AssetType is the nature of an asset.
type AssetType string

const (
	TypePhysical  AssetType = "physical"
	TypeFinancial AssetType = "financial"
	TypeDigital   AssetType = "digital"
)

// Valid reports whether t is a known asset type.
func (t AssetType) Valid() bool {
	switch t {
	case TypePhysical, TypeFinancial, TypeDigital:
		return true
	}
	return false
}

// Asset is a tracked holding owned by the current user.
type Asset struct {
	ID            string          `json:"id,omitempty" yaml:"id"`
	Name          string          `json:"name" yaml:"name"`
	Category      AssetCategory   `json:"category" yaml:"category"`
	Type          AssetType       `json:"type" yaml:"type"`
	PurchasePrice decimal.Decimal `json:"purchasePrice" yaml:"purchase_price"`
	CurrentValue  decimal.Decimal `json:"currentValue" yaml:"current_value"`
	Quantity      decimal.Decimal `json:"quantity" yaml:"quantity"`
	PurchaseDate  time.Time       `json:"purchaseDate" yaml:"purchase_date"`

	// AppreciationRate is the expected annual change in percent; negative
	// values mean depreciation.
	AppreciationRate *float64 `json:"appreciationRate,omitempty" yaml:"appreciation_rate"`
	TickerSymbol     string   `json:"tickerSymbol,omitempty" yaml:"ticker_symbol"`
	CryptoID         string   `json:"cryptoId,omitempty" yaml:"crypto_id"`
}

// Validate performs the required-field checks done before create/update.
func (a *Asset) Validate() error {
	var errs []error
	if a.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !a.Category.Valid() {
		errs = append(errs, fmt.Errorf("invalid category %q", a.Category))
	}
	if !a.Type.Valid() {
		errs = append(errs, fmt.Errorf("invalid type %q", a.Type))
	}
	if a.PurchasePrice.IsNegative() {
		errs = append(errs, errors.New("purchase price must not be negative"))
	}
	if a.CurrentValue.IsNegative() {
		errs = append(errs, errors.New("current value must not be negative"))
	}
	if a.Quantity.IsNegative() {
		errs = append(errs, errors.New("quantity must not be negative"))
	}
	if a.PurchaseDate.IsZero() {
		errs = append(errs, errors.New("purchase date is required"))
	}
	return errors.Join(errs...)
}

// HasMarketData reports whether the asset can be priced from a market feed.
func (a *Asset) HasMarketData() bool {
	return a.TickerSymbol != "" || a.CryptoID != ""
}

// AssetHistory is one observed value of an asset. Records are append-only.
type AssetHistory struct {
	AssetID   string    `json:"assetId"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}
