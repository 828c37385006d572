package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon-core/pkg/errno"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  env: production
nodes:
  - name: bcoin-a
    host: 127.0.0.1
    port: 8332
    user: user
    pass: pass
  - name: geth-b
    kind: eth
    url: http://127.0.0.1:8545
    timeout: 3s
subscribers:
  - ops@example.com
interval: 30s
smtp:
  host: smtp.example.com
  from: beacon@example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "beacon", cfg.App.Name)
	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "smtp", cfg.Notify.Mode)
	assert.Equal(t, 587, cfg.SMTP.Port)
	require.Len(t, cfg.Nodes, 2)

	assert.Equal(t, "bitcoin", cfg.Nodes[0].Kind)
	assert.Equal(t, 10*time.Second, cfg.Nodes[0].Timeout)
	assert.Equal(t, "http://127.0.0.1:8332/", cfg.Nodes[0].Endpoint())

	assert.Equal(t, "eth", cfg.Nodes[1].Kind)
	assert.Equal(t, 3*time.Second, cfg.Nodes[1].Timeout)
	assert.Equal(t, "http://127.0.0.1:8545", cfg.Nodes[1].Endpoint())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no nodes", "interval: 1m\n"},
		{"duplicate node", `
nodes:
  - {name: a, host: h1}
  - {name: a, host: h2}
notify: {mode: log}
`},
		{"bad subscriber", `
nodes:
  - {name: a, host: h1}
subscribers: [not-an-email]
notify: {mode: log}
`},
		{"smtp missing", `
nodes:
  - {name: a, host: h1}
subscribers: [ops@example.com]
`},
		{"queue without redis", `
nodes:
  - {name: a, host: h1}
subscribers: [ops@example.com]
notify: {mode: queue}
smtp: {host: smtp.example.com, from: b@example.com}
`},
		{"unknown kind", `
nodes:
  - {name: a, host: h1, kind: solana}
notify: {mode: log}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errno.ErrConfigInvalid), err.Error())
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNodeConfig_Endpoint(t *testing.T) {
	n := NodeConfig{Host: "node.example.com", HTTPS: true}
	assert.Equal(t, "https://node.example.com/", n.Endpoint())
}
