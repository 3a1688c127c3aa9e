package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// StorefrontConfig holds configuration for the fixture shop
type StorefrontConfig struct {
	Port     string
	Username string
	Password string
	Products []string
	// RenderDelay postpones the account page and cart item so explicit waits have something to wait for
	RenderDelay time.Duration
}

// LoadStorefrontConfig loads fixture shop configuration from environment variables
func LoadStorefrontConfig(getenv func(string) string) (StorefrontConfig, error) {
	data := LoadSuiteData(getenv)
	config := StorefrontConfig{
		Port:     getenv("PORT"),
		Username: data.Username,
		Password: data.Password,
		Products: []string{"Product", "Kid's Product", `24" Monitor`},
	}

	if config.Port == "" {
		config.Port = "8080" // Default to port 8080
	}

	if v := getenv("SHOPCHECK_STOREFRONT_PRODUCTS"); v != "" {
		products, err := parseProducts(v)
		if err != nil {
			return StorefrontConfig{}, err
		}
		config.Products = products
	}

	var err error
	config.RenderDelay, err = parseDelay(getenv, "SHOPCHECK_RENDER_DELAY", 300*time.Millisecond)
	if err != nil {
		return StorefrontConfig{}, err
	}

	return config, nil
}

// parseProducts reads either a flow sequence such as ["Shoes, red", Hat],
// which keeps commas inside names, or a plain comma-separated list.
func parseProducts(v string) ([]string, error) {
	var names []string
	if strings.HasPrefix(strings.TrimSpace(v), "[") {
		if err := yaml.Unmarshal([]byte(v), &names); err != nil {
			return nil, fmt.Errorf("SHOPCHECK_STOREFRONT_PRODUCTS must be a list such as [\"Shoes, red\", Hat]: %w", err)
		}
	} else {
		names = strings.Split(v, ",")
	}

	products := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			products = append(products, name)
		}
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("SHOPCHECK_STOREFRONT_PRODUCTS lists no products: %q", v)
	}
	return products, nil
}

// parseDelay reads a duration that may be zero, keeping def when the variable is unset
func parseDelay(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 300ms: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", key, d)
	}
	return d, nil
}
