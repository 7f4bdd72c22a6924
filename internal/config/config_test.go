// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "gatekeeper.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0o600))
	return tmpFile
}

func TestLoadDefaults(t *testing.T) {
	ResetConfig()
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	timeout, err := cfg.ShutdownTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestLoadFlatFile(t *testing.T) {
	ResetConfig()
	tmpFile := writeConfig(t, `
databasePath: "/var/lib/gatekeeper"
bindAddr: "127.0.0.1"
metricsPort: 9100
shutdownTimeout: "5s"
tracing: true
`)
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	expected := defaultConfig()
	expected.DatabasePath = "/var/lib/gatekeeper"
	expected.BindAddr = "127.0.0.1"
	expected.MetricsPort = 9100
	expected.ShutdownTimeout = "5s"
	expected.Tracing = true
	assert.Equal(t, expected, cfg)
}

func TestLoadSections(t *testing.T) {
	ResetConfig()
	tmpFile := writeConfig(t, `
config:
  metricsPort: 9200
database:
  blob:
    plugin: badger
    badger:
      block-cache-size: 1024
  metadata:
    plugin: sqlite
`)
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, uint(9200), cfg.MetricsPort)
	assert.Equal(t, "badger", cfg.BlobPlugin)
	assert.Equal(t, "sqlite", cfg.MetadataPlugin)
	assert.Equal(t, DefaultDatabasePath, cfg.DatabasePath)
}

func TestLoadEnvironment(t *testing.T) {
	ResetConfig()
	t.Setenv("GATEKEEPER_METRICS_PORT", "9300")
	t.Setenv("GATEKEEPER_DATABASE_PATH", "/tmp/gk")
	t.Setenv("GATEKEEPER_DISABLE_JOURNAL", "true")
	tmpFile := writeConfig(t, "metricsPort: 9200\n")
	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, uint(9300), cfg.MetricsPort)
	assert.Equal(t, "/tmp/gk", cfg.DatabasePath)
	assert.True(t, cfg.DisableJournal)
}

func TestLoadInvalid(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(writeConfig(t, "shutdownTimeout: \"soon\"\n"))
	require.Error(t, err)
	ResetConfig()
	_, err = LoadConfig(writeConfig(t, "metricsPort: [1\n"))
	require.Error(t, err)
	ResetConfig()
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
