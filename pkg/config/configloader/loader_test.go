package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Server struct {
		Port int `koanf:"port"`
	} `koanf:"server"`
	Database struct {
		URL     string        `koanf:"url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"database"`
	Store string `koanf:"store"`
}

type httpTestConfig struct {
	Server struct {
		Port           int `koanf:"port"`
		MaxHeaderBytes int `koanf:"maxheaderbytes"`
		Timeout        struct {
			ReadHeader time.Duration `koanf:"readheader"`
		} `koanf:"timeout"`
	} `koanf:"server"`
}

func (c *httpTestConfig) Validate() error {
	return nil
}

func (c *testConfig) Validate() error {
	if c.Server.Port == 0 {
		return errors.New("port is required")
	}
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_Load_Precedence(t *testing.T) {
	// given
	dir := t.TempDir()
	configFile := writeFile(t, dir, "config.yaml", `
server:
  port: 8080
database:
  url: postgres://yaml/catalog
  timeout: 5s
store: postgres
`)
	envFile := writeFile(t, dir, ".env", "PRODUCT_DATABASE_URL=postgres://dotenv/catalog\nOTHER_STORE=ignored\n")
	t.Setenv("PRODUCT_SERVER_PORT", "9090")

	// when
	cfg, err := Load[*testConfig]("product", WithConfigFile(configFile), WithEnvFile(envFile))

	// then
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port, "system env wins over yaml")
	assert.Equal(t, "postgres://dotenv/catalog", cfg.Database.URL, ".env wins over yaml")
	assert.Equal(t, 5*time.Second, cfg.Database.Timeout)
	assert.Equal(t, "postgres", cfg.Store)
}

func Test_Load_DefaultFilesInWorkingDir(t *testing.T) {
	// given
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "server:\n  port: 7070\n")
	t.Chdir(dir)

	// when
	cfg, err := Load[*testConfig]("product")

	// then
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func Test_Load_ValidationFailure(t *testing.T) {
	// given
	dir := t.TempDir()

	// when
	_, err := Load[*testConfig]("product",
		WithConfigFile(filepath.Join(dir, "missing.yaml")),
		WithEnvFile(filepath.Join(dir, "missing.env")))

	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func Test_Load_MalformedConfigFile(t *testing.T) {
	// given
	dir := t.TempDir()
	configFile := writeFile(t, dir, "config.yaml", "server: [port: 8080\n")

	// when
	_, err := Load[*testConfig]("product",
		WithConfigFile(configFile),
		WithEnvFile(filepath.Join(dir, "missing.env")))

	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading config file")
}

func Test_Load_EnvOverridesCamelCaseYAMLKeys(t *testing.T) {
	// given
	dir := t.TempDir()
	configFile := writeFile(t, dir, "config.yaml", `
server:
  port: 8080
  maxHeaderBytes: 1048576
  timeout:
    readHeader: 2s
`)
	envFile := writeFile(t, dir, ".env", "PRODUCT_SERVER_PORT=8181\n")
	t.Setenv("PRODUCT_SERVER_MAXHEADERBYTES", "4096")
	t.Setenv("PRODUCT_SERVER_TIMEOUT_READHEADER", "9s")

	// when
	cfg, err := Load[*httpTestConfig]("product", WithConfigFile(configFile), WithEnvFile(envFile))

	// then
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 4096, cfg.Server.MaxHeaderBytes)
	assert.Equal(t, 9*time.Second, cfg.Server.Timeout.ReadHeader)
}

func Test_Load_CamelCaseYAMLKeysWithoutOverride(t *testing.T) {
	// given
	dir := t.TempDir()
	configFile := writeFile(t, dir, "config.yaml", "server:\n  maxHeaderBytes: 1048576\n  timeout:\n    readHeader: 2s\n")

	// when
	cfg, err := Load[*httpTestConfig]("product",
		WithConfigFile(configFile),
		WithEnvFile(filepath.Join(dir, "missing.env")))

	// then
	require.NoError(t, err)
	assert.Equal(t, 1048576, cfg.Server.MaxHeaderBytes)
	assert.Equal(t, 2*time.Second, cfg.Server.Timeout.ReadHeader)
}
