package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
backend:
  base_url: http://localhost:8000
jwt:
  secret_key: secret
admin:
  password: admin123
database:
  path: `+filepath.Join(dir, "db", "studio.db")+`
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 18080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:18080", cfg.Server.GetAddress())
	assert.Equal(t, 120*time.Second, cfg.Backend.GetTimeout())
	assert.Equal(t, "/validate-access", cfg.Backend.ValidatePath)
	assert.Equal(t, "/mejorar-contenido", cfg.Backend.ImprovePath)
	assert.Equal(t, 3, cfg.Backend.RetryAttempts)
	assert.Equal(t, time.Second, cfg.Backend.GetRetryStep())
	assert.Equal(t, 30*time.Second, cfg.Backend.GetDedupWindow())
	assert.True(t, cfg.Access.FailOpen)
	assert.Equal(t, "redis", cfg.Storage.KVBackend)
	assert.Equal(t, "A4", cfg.Export.PageFormat)
	assert.Equal(t, 3, cfg.Redis.MaxConcurrency)
	assert.Equal(t, 10*time.Minute, cfg.Redis.GetSlotTTL())
	assert.Equal(t, "admin", cfg.Admin.Username)

	// 数据库目录自动创建
	_, err = os.Stat(filepath.Join(dir, "db"))
	assert.NoError(t, err)
}

func TestLoadConfigExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
backend:
  base_url: http://backend
  retry_attempts: 5
access:
  fail_open: false
storage:
  kv_backend: database
export:
  timezone: America/Santiago
jwt:
  secret_key: secret
admin:
  password: admin123
database:
  path: `+filepath.Join(t.TempDir(), "studio.db")+`
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Backend.RetryAttempts)
	assert.False(t, cfg.Access.FailOpen)
	assert.Equal(t, "database", cfg.Storage.KVBackend)
	assert.Equal(t, "America/Santiago", cfg.Export.Location().String())
}

func TestLoadConfigValidation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "studio.db")

	cases := map[string]string{
		"missing backend": `
jwt: {secret_key: s}
admin: {password: p}
database: {path: ` + dbPath + `}
`,
		"missing secret": `
backend: {base_url: http://b}
admin: {password: p}
database: {path: ` + dbPath + `}
`,
		"bad kv backend": `
backend: {base_url: http://b}
jwt: {secret_key: s}
admin: {password: p}
storage: {kv_backend: memcached}
database: {path: ` + dbPath + `}
`,
		"bad port": `
server: {port: 70000}
backend: {base_url: http://b}
jwt: {secret_key: s}
admin: {password: p}
database: {path: ` + dbPath + `}
`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestExportLocationFallback(t *testing.T) {
	e := ExportConfig{Timezone: "Nowhere/Invalid"}
	assert.Equal(t, time.Local, e.Location())
}
