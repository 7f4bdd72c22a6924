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

package database

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/gatekeeper/database/plugin"
	"github.com/blinklabs-io/gatekeeper/database/plugin/blob"
	"github.com/blinklabs-io/gatekeeper/database/plugin/blob/badger"
	"github.com/blinklabs-io/gatekeeper/database/plugin/metadata"
	_ "github.com/blinklabs-io/gatekeeper/database/plugin/metadata/mysql"
	_ "github.com/blinklabs-io/gatekeeper/database/plugin/metadata/postgres"
	"github.com/blinklabs-io/gatekeeper/database/plugin/metadata/sqlite"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

type Config struct {
	PromRegistry   prometheus.Registerer
	Logger         *slog.Logger
	BlobPlugin     string
	MetadataPlugin string
	// DataDir is passed to the storage plugins. An empty value selects
	// in-memory storage
	DataDir string
}

// Database represents our data storage services
type Database struct {
	config   *Config
	logger   *slog.Logger
	blob     blob.BlobStore
	metadata metadata.MetadataStore
}

// Blob returns the underling blob store instance
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// Config returns the config object used for the database instance
func (d *Database) Config() *Config {
	return d.config
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.config.DataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

func (d *Database) init() error {
	// Check commit timestamp
	if err := d.checkCommitTimestamp(); err != nil {
		return err
	}
	return nil
}

// New creates a new database instance with the configured storage plugins
func New(config *Config) (*Database, error) {
	if config == nil {
		config = &Config{}
	}
	if config.BlobPlugin == "" {
		config.BlobPlugin = DefaultBlobPlugin
	}
	if config.MetadataPlugin == "" {
		config.MetadataPlugin = DefaultMetadataPlugin
	}
	logger := config.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	// Pass runtime settings to the plugins before they are instantiated
	badger.SetRuntimeOptions(logger, config.PromRegistry)
	sqlite.SetLogger(logger)
	if err := plugin.SetPluginOption(plugin.PluginTypeBlob, config.BlobPlugin, "data-dir", config.DataDir); err != nil {
		return nil, fmt.Errorf("set blob data dir: %w", err)
	}
	if err := plugin.SetPluginOption(plugin.PluginTypeMetadata, config.MetadataPlugin, "data-dir", config.DataDir); err != nil {
		return nil, fmt.Errorf("set metadata data dir: %w", err)
	}
	blobDb, err := blob.New(config.BlobPlugin)
	if err != nil {
		return nil, err
	}
	metadataDb, err := metadata.New(config.MetadataPlugin)
	if err != nil {
		_ = blobDb.Close()
		return nil, err
	}
	db := &Database{
		config:   config,
		logger:   logger,
		blob:     blobDb,
		metadata: metadataDb,
	}
	if err := db.init(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	db.logger.Debug(
		"database opened",
		"component", "database",
		"blob", config.BlobPlugin,
		"metadata", config.MetadataPlugin,
		"data_dir", config.DataDir,
	)
	return db, nil
}
