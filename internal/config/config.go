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
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/gatekeeper/database/plugin"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "gatekeeper.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultBlobPlugin      = "badger"
	DefaultMetadataPlugin  = "sqlite"
	DefaultDatabasePath    = ".gatekeeper"
	DefaultBindAddr        = "0.0.0.0"
	DefaultMetricsPort     = 12799

	envPrefix = "gatekeeper"
)

// ErrPluginListRequested is returned when the user requests to list available plugins
var ErrPluginListRequested = errors.New("plugin list requested")

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type tempConfig struct {
	Config   *Config                   `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	BlobPlugin      string `yaml:"blobPlugin"      envconfig:"GATEKEEPER_DATABASE_BLOB_PLUGIN"`
	MetadataPlugin  string `yaml:"metadataPlugin"  envconfig:"GATEKEEPER_DATABASE_METADATA_PLUGIN"`
	DatabasePath    string `yaml:"databasePath"                                                  split_words:"true"`
	BindAddr        string `yaml:"bindAddr"                                                      split_words:"true"`
	ShutdownTimeout string `yaml:"shutdownTimeout"                                               split_words:"true"`
	// TracingEndpoint enables OTLP/HTTP trace export when set
	TracingEndpoint string `yaml:"tracingEndpoint"                                               split_words:"true"`
	MetricsPort     uint   `yaml:"metricsPort"                                                   split_words:"true"`
	Tracing         bool   `yaml:"tracing"`
	TracingStdout   bool   `yaml:"tracingStdout"                                                 split_words:"true"`
	DisableJournal  bool   `yaml:"disableJournal"                                                split_words:"true"`
	AsyncEvents     bool   `yaml:"asyncEvents"                                                   split_words:"true"`
}

// ShutdownTimeoutDuration parses the configured shutdown timeout
func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	ret, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown timeout %q: %w", c.ShutdownTimeout, err)
	}
	return ret, nil
}

func defaultConfig() *Config {
	return &Config{
		BlobPlugin:      DefaultBlobPlugin,
		MetadataPlugin:  DefaultMetadataPlugin,
		DatabasePath:    DefaultDatabasePath,
		BindAddr:        DefaultBindAddr,
		MetricsPort:     DefaultMetricsPort,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

var globalConfig = defaultConfig()

// findConfigFile checks ~/.gatekeeper/gatekeeper.yaml, then
// /etc/gatekeeper/gatekeeper.yaml
func findConfigFile() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, ".gatekeeper", "gatekeeper.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return userPath
		}
	}
	systemPath := "/etc/gatekeeper/gatekeeper.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath
	}
	return ""
}

func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadConfigFile(configFile); err != nil {
			return nil, err
		}
	}
	// Process environment variables
	if err := envconfig.Process(envPrefix, globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	// Process plugin environment variables
	if err := plugin.ProcessEnvVars(); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}
	if _, err := globalConfig.ShutdownTimeoutDuration(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func loadConfigFile(configFile string) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	// First unmarshal into temp config to handle plugin sections
	var tempCfg tempConfig
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if tempCfg.Config != nil {
		// Overlay config values onto existing defaults
		configBytes, err := yaml.Marshal(tempCfg.Config)
		if err != nil {
			return fmt.Errorf("error re-marshalling config: %w", err)
		}
		if err := yaml.Unmarshal(configBytes, globalConfig); err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else {
		// Otherwise unmarshal the whole file as main config
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process plugin configurations
	pluginConfig := make(map[string]map[string]map[string]any)
	if tempCfg.Blob != nil {
		pluginConfig["blob"] = tempCfg.Blob
	}
	if tempCfg.Metadata != nil {
		pluginConfig["metadata"] = tempCfg.Metadata
	}
	if tempCfg.Database != nil {
		if tempCfg.Database.Blob != nil {
			if name, ok := tempCfg.Database.Blob["plugin"].(string); ok {
				globalConfig.BlobPlugin = name
				delete(tempCfg.Database.Blob, "plugin")
			}
			mergePluginConfig(pluginConfig, "blob", tempCfg.Database.Blob)
		}
		if tempCfg.Database.Metadata != nil {
			if name, ok := tempCfg.Database.Metadata["plugin"].(string); ok {
				globalConfig.MetadataPlugin = name
				delete(tempCfg.Database.Metadata, "plugin")
			}
			mergePluginConfig(pluginConfig, "metadata", tempCfg.Database.Metadata)
		}
	}
	if len(pluginConfig) > 0 {
		if err := plugin.ProcessConfig(pluginConfig); err != nil {
			return fmt.Errorf("error processing plugin config: %w", err)
		}
	}
	return nil
}

// mergePluginConfig adds the per-plugin maps from a database section to the
// plugin config for the given plugin type
func mergePluginConfig(
	pluginConfig map[string]map[string]map[string]any,
	pluginType string,
	section map[string]any,
) {
	typeConfig := make(map[string]map[string]any)
	for k, v := range section {
		switch val := v.(type) {
		case map[string]any:
			typeConfig[k] = val
		case map[any]any:
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			typeConfig[k] = stringAnyMap
		default:
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				pluginType,
				k,
				v,
			)
		}
	}
	if pluginConfig[pluginType] == nil {
		pluginConfig[pluginType] = typeConfig
	} else {
		maps.Copy(pluginConfig[pluginType], typeConfig)
	}
}

func GetConfig() *Config {
	return globalConfig
}

// ResetConfig restores the default configuration
func ResetConfig() {
	globalConfig = defaultConfig()
}
