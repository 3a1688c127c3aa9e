package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the optional YAML configuration file.
// Every value maps onto the environment variable of the same setting.
type File struct {
	Browser struct {
		DriverPath   string `yaml:"driver_path"`
		BaseURL      string `yaml:"base_url"`
		Timeout      string `yaml:"timeout"`
		PollInterval string `yaml:"poll_interval"`
		Name         string `yaml:"name"`
		Headless     *bool  `yaml:"headless"`
		CaptureDir   string `yaml:"capture_dir"`
	} `yaml:"browser"`
	Suite struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Product  string `yaml:"product"`
	} `yaml:"suite"`
	Storefront struct {
		Port        string   `yaml:"port"`
		Products    []string `yaml:"products"`
		RenderDelay string   `yaml:"render_delay"`
	} `yaml:"storefront"`
}

// LoadFile parses a YAML configuration file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &f, nil
}

// Getenv layers the file under env: a variable set in env always wins
func (f *File) Getenv(env func(string) string) func(string) string {
	values := f.values()
	return func(key string) string {
		if v := env(key); v != "" {
			return v
		}
		return values[key]
	}
}

func (f *File) values() map[string]string {
	values := map[string]string{
		"SHOPCHECK_DRIVER_PATH":   f.Browser.DriverPath,
		"SHOPCHECK_BASE_URL":      f.Browser.BaseURL,
		"SHOPCHECK_TIMEOUT":       f.Browser.Timeout,
		"SHOPCHECK_POLL_INTERVAL": f.Browser.PollInterval,
		"SHOPCHECK_BROWSER":       f.Browser.Name,
		"SHOPCHECK_CAPTURE_DIR":   f.Browser.CaptureDir,
		"SHOPCHECK_USERNAME":      f.Suite.Username,
		"SHOPCHECK_PASSWORD":      f.Suite.Password,
		"SHOPCHECK_PRODUCT":       f.Suite.Product,
		"PORT":                    f.Storefront.Port,
		"SHOPCHECK_RENDER_DELAY":  f.Storefront.RenderDelay,
	}
	if len(f.Storefront.Products) > 0 {
		// A JSON array is a YAML flow sequence, so names keep their commas
		products, _ := json.Marshal(f.Storefront.Products)
		values["SHOPCHECK_STOREFRONT_PRODUCTS"] = string(products)
	}
	if f.Browser.Headless != nil {
		values["SHOPCHECK_HEADLESS"] = fmt.Sprintf("%t", *f.Browser.Headless)
	}
	return values
}
