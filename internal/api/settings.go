package api

import (
	"context"
	"net/http"

	"AssetSentinel/internal/model"
	"AssetSentinel/internal/storage"
)

// GetSettings fetches the user's settings and refreshes the local cache.
func (c *Client) GetSettings(ctx context.Context) (*model.Settings, error) {
	settings := model.DefaultSettings()
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &settings); err != nil {
		return nil, err
	}
	c.cacheSettings(settings)
	return &settings, nil
}

// UpdateSettings saves s and caches what the backend returned.
func (c *Client) UpdateSettings(ctx context.Context, s model.Settings) (*model.Settings, error) {
	saved := s
	if err := c.do(ctx, http.MethodPut, "/api/settings", s, &saved); err != nil {
		return nil, err
	}
	c.cacheSettings(saved)
	return &saved, nil
}

// CachedSettings returns the settings stored under globalSettings. The
// second result is false when nothing usable is cached, in which case the
// defaults are returned.
func (c *Client) CachedSettings() (model.Settings, bool) {
	return LoadCachedSettings(c.cache)
}

// LoadCachedSettings reads globalSettings from store.
func LoadCachedSettings(store storage.Store) (model.Settings, bool) {
	settings := model.DefaultSettings()
	if store == nil {
		return settings, false
	}
	if err := storage.GetJSON(store, storage.KeyGlobalSettings, &settings); err != nil {
		return model.DefaultSettings(), false
	}
	return settings, true
}

func (c *Client) cacheSettings(s model.Settings) {
	if c.cache == nil {
		return
	}
	if err := storage.SetJSON(c.cache, storage.KeyGlobalSettings, s); err != nil {
		c.log.WithError(err).Warn("failed to cache settings")
	}
}
