package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"AssetSentinel/internal/model"
)

// ErrAssetNotFound is returned by asset sources for unknown ids.
var ErrAssetNotFound = errors.New("asset not found")

// AssetSource lists the user's assets. *api.Client satisfies it.
type AssetSource interface {
	ListAssets(ctx context.Context) ([]model.Asset, error)
	GetAsset(ctx context.Context, id string) (*model.Asset, error)
}

// SummarySource is implemented by sources that compute the portfolio
// summary themselves.
type SummarySource interface {
	PortfolioSummary(ctx context.Context) (*model.PortfolioSummary, error)
}

// StaticAssets serves a fixed asset list, used when no backend is configured.
type StaticAssets struct {
	Assets []model.Asset `yaml:"assets"`
}

// LoadStaticAssets reads an asset list from a YAML file.
func LoadStaticAssets(path string) (*StaticAssets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assets file: %w", err)
	}
	var s StaticAssets
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse assets file: %w", err)
	}
	for i := range s.Assets {
		a := &s.Assets[i]
		if a.ID == "" {
			return nil, fmt.Errorf("asset %d (%s): id is required", i, a.Name)
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("asset %s: %w", a.ID, err)
		}
	}
	return &s, nil
}

func (s *StaticAssets) ListAssets(context.Context) ([]model.Asset, error) {
	out := make([]model.Asset, len(s.Assets))
	copy(out, s.Assets)
	return out, nil
}

func (s *StaticAssets) GetAsset(_ context.Context, id string) (*model.Asset, error) {
	for i := range s.Assets {
		if s.Assets[i].ID == id {
			a := s.Assets[i]
			return &a, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", id, ErrAssetNotFound)
}
