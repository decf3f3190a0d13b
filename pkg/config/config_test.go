package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfig_Validate_Defaults(t *testing.T) {
	cfg := DefaultConfig()

	err := cfg.Validate()
	if err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"port too low", 0},
		{"port negative", -1},
		{"port too high", 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Server.Port = tt.port

			err := cfg.Validate()
			if err == nil {
				t.Error("Expected validation error for invalid port")
			}
		})
	}
}

func TestConfig_Validate_MissingDirectories(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RoutingConfig)
	}{
		{"api dir", func(r *RoutingConfig) { r.APIDir = "" }},
		{"ssr dir", func(r *RoutingConfig) { r.SSRDir = "" }},
		{"build dir", func(r *RoutingConfig) { r.BuildDir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg.Routing)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_InvalidRewritePattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Routing.Rewrites = Rewrites{{Pattern: "^/(unclosed$", Replacement: "/x"}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rewrite pattern")
}

func TestConfig_Validate_CORSWithoutOrigins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CORS.Enabled = true

	assert.Error(t, cfg.Validate())

	cfg.CORS.AllowedOrigins = []string{"https://example.com"}
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_RateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerMinute = 0

	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_CompressionLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compression.Level = "extreme"

	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_OpsPrefix(t *testing.T) {
	for _, prefix := range []string{"", "/", "ops"} {
		t.Run(prefix, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Ops.Prefix = prefix
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		host     string
		port     int
		expected string
	}{
		{"0.0.0.0", 80, "0.0.0.0:80"},
		{"127.0.0.1", 3000, "127.0.0.1:3000"},
		{"example.com", 443, "example.com:443"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			cfg := ServerConfig{Host: tt.host, Port: tt.port}
			if cfg.Address() != tt.expected {
				t.Errorf("Address() = %q, want %q", cfg.Address(), tt.expected)
			}
		})
	}
}

func TestOpsConfig_OpsPath(t *testing.T) {
	assert.Equal(t, "/_site/health", (&OpsConfig{Prefix: "/_site"}).OpsPath("health"))
	assert.Equal(t, "/ops/metrics", (&OpsConfig{Prefix: "/ops/"}).OpsPath("metrics"))
}

func TestLoad_NonExistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "src/api", cfg.Routing.APIDir)
	assert.Equal(t, "src/ssr", cfg.Routing.SSRDir)
	assert.Equal(t, "dist", cfg.Routing.BuildDir)
	assert.Empty(t, cfg.Routing.Rewrites)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_ValidYAMLFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server:
  host: localhost
  port: 9090
  read_timeout: 5s
logging:
  level: debug
  format: text
buildFilesDirectory: public
rewrites:
  "^/users/(\\d+)$": "/user?id=$1"
  "^/old$": "/new?x=1"
  "^/legacy/(.*)$": "/\\1"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "public", cfg.Routing.BuildDir)
	assert.Equal(t, "src/api", cfg.Routing.APIDir)

	require.Len(t, cfg.Routing.Rewrites, 3)
	assert.Equal(t, `^/users/(\d+)$`, cfg.Routing.Rewrites[0].Pattern)
	assert.Equal(t, "^/old$", cfg.Routing.Rewrites[1].Pattern)
	assert.Equal(t, `^/legacy/(.*)$`, cfg.Routing.Rewrites[2].Pattern)
	for _, r := range cfg.Routing.Rewrites {
		assert.True(t, r.Compiled())
	}
}

func TestLoad_OriginalJSONDocument(t *testing.T) {
	path := writeConfig(t, "phpconfig.json", `{
  "apiPathsDirectory": "backend/api",
  "ssrPathsDirectory": "backend/ssr",
  "buildFilesDirectory": "build",
  "websiteTitle": "Attendance",
  "rewrites": {
    "^/z$": "/last",
    "^/a$": "/first"
  }
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "backend/api", cfg.Routing.APIDir)
	assert.Equal(t, "backend/ssr", cfg.Routing.SSRDir)
	assert.Equal(t, "build", cfg.Routing.BuildDir)
	require.Len(t, cfg.Routing.Rewrites, 2)
	assert.Equal(t, "^/z$", cfg.Routing.Rewrites[0].Pattern)
	assert.Equal(t, "/last", cfg.Routing.Rewrites[0].Replacement)
	assert.Equal(t, "^/a$", cfg.Routing.Rewrites[1].Pattern)
}

func TestLoad_RewriteSequenceForm(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
rewrites:
  - pattern: "^/b$"
    replacement: "/two"
  - pattern: "^/a$"
    replacement: "/one"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Routing.Rewrites, 2)
	assert.Equal(t, "^/b$", cfg.Routing.Rewrites[0].Pattern)
	assert.Equal(t, "/one", cfg.Routing.Rewrites[1].Replacement)
}

func TestLoad_InvalidRewritesShape(t *testing.T) {
	path := writeConfig(t, "config.yaml", "rewrites: 42\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid.yaml", `
server:
  port: "invalid"
`)

	_, err := Load(path)
	if err == nil {
		t.Error("Expected error for invalid configuration")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
server:
  port: 9090
buildFilesDirectory: public
`)

	t.Setenv("SITE_SERVER_PORT", "7070")
	t.Setenv("SITE_ROUTING_BUILD_DIR", "/srv/site")
	t.Setenv("SITE_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/srv/site", cfg.Routing.BuildDir)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestRewrites_MarshalYAMLKeepsOrder(t *testing.T) {
	rs := Rewrites{
		{Pattern: "^/z$", Replacement: "/1"},
		{Pattern: "^/a$", Replacement: "/2"},
	}

	out, err := yaml.Marshal(struct {
		Rewrites Rewrites `yaml:"rewrites"`
	}{rs})
	require.NoError(t, err)

	var back struct {
		Rewrites Rewrites `yaml:"rewrites"`
	}
	require.NoError(t, yaml.Unmarshal(out, &back))
	require.Len(t, back.Rewrites, 2)
	assert.Equal(t, "^/z$", back.Rewrites[0].Pattern)
	assert.Equal(t, "^/a$", back.Rewrites[1].Pattern)
}
