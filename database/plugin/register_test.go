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

package plugin_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/gatekeeper/database/plugin"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPlugin struct {
	started bool
}

func (m *mockPlugin) Start() error {
	m.started = true
	return nil
}

func (m *mockPlugin) Stop() error { return nil }

func TestRegisterAndGetPlugin(t *testing.T) {
	pluginName := "test-plugin-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeBlob,
		Name:               pluginName,
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
	})
	p := plugin.GetPlugin(plugin.PluginTypeBlob, pluginName)
	require.NotNil(t, p)
	assert.IsType(t, &mockPlugin{}, p)
	// Same name under a different type is a different plugin
	assert.Nil(t, plugin.GetPlugin(plugin.PluginTypeMetadata, pluginName))
	assert.Nil(t, plugin.GetPlugin(plugin.PluginTypeBlob, "missing-"+t.Name()))

	found := false
	for _, entry := range plugin.GetPlugins(plugin.PluginTypeBlob) {
		if entry.Name == pluginName {
			found = true
		}
	}
	assert.True(t, found, "plugin not in GetPlugins list")
}

func TestStartPlugin(t *testing.T) {
	pluginName := "start-plugin-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeMetadata,
		Name:               pluginName,
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
	})
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	require.NoError(t, err)
	mp, ok := p.(*mockPlugin)
	require.True(t, ok)
	assert.True(t, mp.started)

	_, err = plugin.StartPlugin(plugin.PluginTypeMetadata, "missing-"+t.Name())
	require.Error(t, err)
}

func TestStartPluginDeferredError(t *testing.T) {
	pluginName := "error-plugin-" + t.Name()
	testErr := errors.New("boom")
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeBlob,
		Name:               pluginName,
		NewFromOptionsFunc: func() plugin.Plugin { return plugin.NewErrorPlugin(testErr) },
	})
	_, err := plugin.StartPlugin(plugin.PluginTypeBlob, pluginName)
	require.ErrorIs(t, err, testErr)
}

func TestPluginOptions(t *testing.T) {
	pluginName := "options-" + t.Name()
	var (
		dir   string
		size  uint64
		gc    bool
		count int
	)
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeBlob,
		Name:               pluginName,
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
		Options: []plugin.PluginOption{
			{Name: "data-dir", Type: plugin.PluginOptionTypeString, DefaultValue: "x", Dest: &dir},
			{Name: "cache-size", Type: plugin.PluginOptionTypeUint, DefaultValue: uint64(1), Dest: &size},
			{Name: "gc", Type: plugin.PluginOptionTypeBool, DefaultValue: true, Dest: &gc},
			{Name: "count", Type: plugin.PluginOptionTypeInt, DefaultValue: 2, Dest: &count},
		},
	})

	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "data-dir", "/tmp/a"))
	assert.Equal(t, "/tmp/a", dir)
	require.Error(t, plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "cache-size", -1))
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, pluginName, "unknown", 1))
	require.Error(t, plugin.SetPluginOption(plugin.PluginTypeBlob, "missing-"+t.Name(), "data-dir", ""))

	require.NoError(t, plugin.ProcessConfig(map[string]map[string]map[string]any{
		"blob": {pluginName: {"cache-size": 42, "gc": false, "count": 7}},
	}))
	assert.Equal(t, uint64(42), size)
	assert.False(t, gc)
	assert.Equal(t, 7, count)

	t.Setenv("GATEKEEPER_BLOB_OPTIONS_TESTPLUGINOPTIONS_DATA_DIR", "/tmp/env")
	require.NoError(t, plugin.ProcessEnvVars())
	assert.Equal(t, "/tmp/env", dir)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, plugin.PopulateCmdlineOptions(fs))
	require.NoError(t, fs.Parse([]string{"--blob-" + pluginName + "-count=9"}))
	assert.Equal(t, 9, count)
}
