package azurefn

import (
	"errors"
	"net/url"
	"time"
)

type Config struct {
	// BaseURL is the function app host, e.g. https://kb-ingest.azurewebsites.net.
	BaseURL string
	// Key is sent as the "code" query parameter when non-empty.
	Key     string
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("azure function base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("azure function base URL must be absolute")
	}
	if c.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	return nil
}
