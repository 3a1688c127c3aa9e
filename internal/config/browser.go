package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the shop the regression suite targets when nothing else is configured
const DefaultBaseURL = "https://www.example-ecommerce-site.com"

// Supported browser engines
const (
	BrowserChromium = "chromium"
	BrowserFirefox  = "firefox"
	BrowserWebKit   = "webkit"
)

// BrowserConfig holds everything needed to start and drive the browser session
type BrowserConfig struct {
	// DriverPath is the directory holding the playwright driver; empty uses the library default
	DriverPath     string
	BaseURL        string
	DefaultTimeout time.Duration
	PollInterval   time.Duration
	Browser        string
	Headless       bool
	// CaptureDir receives screenshots of failed cases when set
	CaptureDir string
}

// LoadBrowserConfig loads browser configuration from environment variables
func LoadBrowserConfig(getenv func(string) string) (*BrowserConfig, error) {
	config := &BrowserConfig{
		DriverPath:     getenv("SHOPCHECK_DRIVER_PATH"),
		BaseURL:        getenv("SHOPCHECK_BASE_URL"),
		DefaultTimeout: 10 * time.Second,
		PollInterval:   500 * time.Millisecond,
		Browser:        getenv("SHOPCHECK_BROWSER"),
		Headless:       true,
		CaptureDir:     getenv("SHOPCHECK_CAPTURE_DIR"),
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(config.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("SHOPCHECK_BASE_URL must be an absolute URL, got %q", config.BaseURL)
	}

	if config.Browser == "" {
		config.Browser = BrowserChromium
	}
	switch config.Browser {
	case BrowserChromium, BrowserFirefox, BrowserWebKit:
	default:
		return nil, fmt.Errorf("SHOPCHECK_BROWSER must be one of chromium, firefox, webkit, got %q", config.Browser)
	}

	if config.DefaultTimeout, err = parseDuration(getenv, "SHOPCHECK_TIMEOUT", config.DefaultTimeout); err != nil {
		return nil, err
	}
	if config.PollInterval, err = parseDuration(getenv, "SHOPCHECK_POLL_INTERVAL", config.PollInterval); err != nil {
		return nil, err
	}

	if v := getenv("SHOPCHECK_HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("SHOPCHECK_HEADLESS must be a boolean, got %q", v)
		}
		config.Headless = headless
	}

	return config, nil
}

// parseDuration reads a positive duration, keeping def when the variable is unset
func parseDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 10s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}
