package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envMap turns a map into a getenv function
func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadBrowserConfig_Defaults(t *testing.T) {
	cfg, err := LoadBrowserConfig(envMap(nil))

	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.DefaultTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, BrowserChromium, cfg.Browser)
	assert.True(t, cfg.Headless)
	assert.Empty(t, cfg.DriverPath)
}

func TestLoadBrowserConfig_Overrides(t *testing.T) {
	cfg, err := LoadBrowserConfig(envMap(map[string]string{
		"SHOPCHECK_DRIVER_PATH":   "/opt/driver",
		"SHOPCHECK_BASE_URL":      "http://localhost:8080",
		"SHOPCHECK_TIMEOUT":       "3s",
		"SHOPCHECK_POLL_INTERVAL": "50ms",
		"SHOPCHECK_BROWSER":       "firefox",
		"SHOPCHECK_HEADLESS":      "false",
		"SHOPCHECK_CAPTURE_DIR":   "/tmp/captures",
	}))

	require.NoError(t, err)
	assert.Equal(t, "/opt/driver", cfg.DriverPath)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.DefaultTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, BrowserFirefox, cfg.Browser)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "/tmp/captures", cfg.CaptureDir)
}

func TestLoadBrowserConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"relative base url", map[string]string{"SHOPCHECK_BASE_URL": "/shop"}},
		{"unknown browser", map[string]string{"SHOPCHECK_BROWSER": "netscape"}},
		{"bad timeout", map[string]string{"SHOPCHECK_TIMEOUT": "ten seconds"}},
		{"negative timeout", map[string]string{"SHOPCHECK_TIMEOUT": "-1s"}},
		{"zero poll interval", map[string]string{"SHOPCHECK_POLL_INTERVAL": "0s"}},
		{"bad headless", map[string]string{"SHOPCHECK_HEADLESS": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadBrowserConfig(envMap(tt.env))
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadSuiteData(t *testing.T) {
	assert.Equal(t, SuiteData{Username: "user", Password: "pass", Product: "Product"}, LoadSuiteData(envMap(nil)))

	data := LoadSuiteData(envMap(map[string]string{"SHOPCHECK_PRODUCT": "Kid's Product"}))
	assert.Equal(t, "Kid's Product", data.Product)
	assert.Equal(t, "user", data.Username)
}

func TestLoadStorefrontConfig(t *testing.T) {
	cfg, err := LoadStorefrontConfig(envMap(map[string]string{
		"PORT":                          "9090",
		"SHOPCHECK_STOREFRONT_PRODUCTS": "Alpha, Beta ,,Gamma",
		"SHOPCHECK_RENDER_DELAY":        "1s",
	}))

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, cfg.Products)
	assert.Equal(t, time.Second, cfg.RenderDelay)
	assert.Equal(t, "user", cfg.Username)

	_, err = LoadStorefrontConfig(envMap(map[string]string{"SHOPCHECK_RENDER_DELAY": "soon"}))
	assert.Error(t, err)
}

func TestLoadStorefrontConfig_ProductList(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
		wantErr  bool
	}{
		{name: "comma separated", value: "Hat,Scarf", expected: []string{"Hat", "Scarf"}},
		{name: "flow sequence keeps commas", value: `["Shoes, red", Hat]`, expected: []string{"Shoes, red", "Hat"}},
		{name: "quoted names", value: `["24\" Monitor", "Kid's Product"]`, expected: []string{`24" Monitor`, "Kid's Product"}},
		{name: "unterminated sequence", value: `["Shoes, red"`, wantErr: true},
		{name: "no names", value: " , ,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadStorefrontConfig(envMap(map[string]string{"SHOPCHECK_STOREFRONT_PRODUCTS": tt.value}))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.Products)
		})
	}
}

func TestLoadStorefrontConfig_RenderDelay(t *testing.T) {
	tests := []struct {
		value    string
		expected time.Duration
		wantErr  bool
	}{
		{value: "", expected: 300 * time.Millisecond},
		{value: "0s", expected: 0},
		{value: "1500ms", expected: 1500 * time.Millisecond},
		{value: "-1s", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg, err := LoadStorefrontConfig(envMap(map[string]string{"SHOPCHECK_RENDER_DELAY": tt.value}))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.RenderDelay)
		})
	}
}

func TestLoadPostgresConfig(t *testing.T) {
	_, err := LoadPostgresConfig(envMap(map[string]string{"POSTGRES_DB": "runs", "POSTGRES_HOSTNAME": "db"}))
	assert.EqualError(t, err, "POSTGRES_USER is required")

	cfg, err := LoadPostgresConfig(envMap(map[string]string{
		"POSTGRES_USER":     "shop",
		"POSTGRES_PASSWORD": "it's secret",
		"POSTGRES_DB":       "runs",
		"POSTGRES_HOSTNAME": "db",
	}))
	require.NoError(t, err)
	assert.Equal(t, `host=db port=5432 user=shop dbname=runs sslmode=disable password='it\'s secret'`, cfg.ConnectionString())
}

func TestFile_GetenvLayering(t *testing.T) {
	// GIVEN a config file
	path := filepath.Join(t.TempDir(), "shopcheck.yaml")
	content := `
browser:
  base_url: http://shop.test
  timeout: 4s
  headless: false
suite:
  product: Premium Widget
storefront:
  products: [One, Two]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := LoadFile(path)
	require.NoError(t, err)

	// WHEN the environment overrides one of its values
	getenv := f.Getenv(envMap(map[string]string{"SHOPCHECK_TIMEOUT": "7s"}))

	// THEN the environment wins and the file fills the rest
	cfg, err := LoadBrowserConfig(getenv)
	require.NoError(t, err)
	assert.Equal(t, "http://shop.test", cfg.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.DefaultTimeout)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "Premium Widget", LoadSuiteData(getenv).Product)
	products, err := LoadStorefrontConfig(getenv)
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Two"}, products.Products)
}

func TestFile_ProductNamesKeepCommas(t *testing.T) {
	// GIVEN a file listing a product whose name contains a comma
	path := filepath.Join(t.TempDir(), "shopcheck.yaml")
	content := `
storefront:
  products: ["Shoes, red", Hat, 'Kid''s Product']
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	f, err := LoadFile(path)
	require.NoError(t, err)

	// WHEN the storefront config is loaded through the file
	cfg, err := LoadStorefrontConfig(f.Getenv(envMap(nil)))

	// THEN every name arrives whole
	require.NoError(t, err)
	assert.Equal(t, []string{"Shoes, red", "Hat", "Kid's Product"}, cfg.Products)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("browser: [unclosed"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
