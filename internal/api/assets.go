package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"AssetSentinel/internal/model"
)

func assetPath(id string) string {
	return "/api/assets/" + url.PathEscape(id)
}

// ListAssets returns every asset of the signed-in user.
func (c *Client) ListAssets(ctx context.Context) ([]model.Asset, error) {
	var assets []model.Asset
	if err := c.do(ctx, http.MethodGet, "/api/assets", nil, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

func (c *Client) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	if id == "" {
		return nil, errors.New("asset id is required")
	}
	var asset model.Asset
	if err := c.do(ctx, http.MethodGet, assetPath(id), nil, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// CreateAsset validates a and posts it. The stored asset is returned.
func (c *Client) CreateAsset(ctx context.Context, a *model.Asset) (*model.Asset, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid asset: %w", err)
	}
	var created model.Asset
	if err := c.do(ctx, http.MethodPost, "/api/assets", a, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateAsset(ctx context.Context, a *model.Asset) (*model.Asset, error) {
	if a.ID == "" {
		return nil, errors.New("asset id is required")
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid asset: %w", err)
	}
	var updated model.Asset
	if err := c.do(ctx, http.MethodPut, assetPath(a.ID), a, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("asset id is required")
	}
	return c.do(ctx, http.MethodDelete, assetPath(id), nil, nil)
}

// AssetHistory returns the recorded values of an asset, oldest first.
func (c *Client) AssetHistory(ctx context.Context, id string) ([]model.AssetHistory, error) {
	if id == "" {
		return nil, errors.New("asset id is required")
	}
	var history []model.AssetHistory
	if err := c.do(ctx, http.MethodGet, assetPath(id)+"/history", nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// PortfolioSummary returns the backend's aggregate view of all assets.
func (c *Client) PortfolioSummary(ctx context.Context) (*model.PortfolioSummary, error) {
	var summary model.PortfolioSummary
	if err := c.do(ctx, http.MethodGet, "/api/portfolio/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
