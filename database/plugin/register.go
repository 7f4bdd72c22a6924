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

package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

// envVarPrefix is prepended to plugin option environment variables, for
// example GATEKEEPER_BLOB_BADGER_DATA_DIR
const envVarPrefix = "GATEKEEPER"

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return ""
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	Type         PluginOptionType
}

func (p *PluginOption) assign(value any) error {
	if p.Dest == nil {
		return fmt.Errorf("nil destination for option %s", p.Name)
	}
	switch p.Type {
	case PluginOptionTypeString:
		dest, ok := p.Dest.(*string)
		if !ok {
			return fmt.Errorf("invalid destination type for option %s: expected *string", p.Name)
		}
		switch v := value.(type) {
		case string:
			*dest = v
		default:
			*dest = fmt.Sprint(v)
		}
	case PluginOptionTypeBool:
		dest, ok := p.Dest.(*bool)
		if !ok {
			return fmt.Errorf("invalid destination type for option %s: expected *bool", p.Name)
		}
		switch v := value.(type) {
		case bool:
			*dest = v
		case string:
			tmp, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for option %s: %w", p.Name, err)
			}
			*dest = tmp
		default:
			return fmt.Errorf("invalid type for option %s: expected bool", p.Name)
		}
	case PluginOptionTypeInt:
		dest, ok := p.Dest.(*int)
		if !ok {
			return fmt.Errorf("invalid destination type for option %s: expected *int", p.Name)
		}
		switch v := value.(type) {
		case int:
			*dest = v
		case string:
			tmp, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for option %s: %w", p.Name, err)
			}
			*dest = tmp
		default:
			return fmt.Errorf("invalid type for option %s: expected int", p.Name)
		}
	case PluginOptionTypeUint:
		dest, ok := p.Dest.(*uint64)
		if !ok {
			return fmt.Errorf("invalid destination type for option %s: expected *uint64", p.Name)
		}
		switch v := value.(type) {
		case uint64:
			*dest = v
		case int:
			if v < 0 {
				return fmt.Errorf("invalid value for option %s: negative int", p.Name)
			}
			*dest = uint64(v)
		case string:
			tmp, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for option %s: %w", p.Name, err)
			}
			*dest = tmp
		default:
			return fmt.Errorf("invalid type for option %s: expected uint64 or int", p.Name)
		}
	default:
		return fmt.Errorf("unknown plugin option type %d for option %s", p.Type, p.Name)
	}
	return nil
}

type PluginEntry struct {
	NewFromOptionsFunc func() Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

var pluginEntries []PluginEntry

// Register adds a plugin to the registry. Plugins register themselves from init()
func Register(pluginEntry PluginEntry) {
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns the registered plugins of the given type
func GetPlugins(pluginType PluginType) []PluginEntry {
	ret := []PluginEntry{}
	for _, p := range pluginEntries {
		if p.Type == pluginType {
			ret = append(ret, p)
		}
	}
	return ret
}

// GetPlugin returns a new instance of the named plugin, or nil if not found
func GetPlugin(pluginType PluginType, pluginName string) Plugin {
	entry := findEntry(pluginType, pluginName)
	if entry == nil || entry.NewFromOptionsFunc == nil {
		return nil
	}
	return entry.NewFromOptionsFunc()
}

func findEntry(pluginType PluginType, pluginName string) *PluginEntry {
	for i := range pluginEntries {
		if pluginEntries[i].Type == pluginType &&
			pluginEntries[i].Name == pluginName {
			return &pluginEntries[i]
		}
	}
	return nil
}

func optionFlagName(p PluginEntry, opt PluginOption) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(p.Type),
		p.Name,
		opt.Name,
	)
}

// PopulateCmdlineOptions adds a flag for every plugin option
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			flagName := optionFlagName(p, opt)
			switch opt.Type {
			case PluginOptionTypeString:
				dest, ok := opt.Dest.(*string)
				defVal, ok2 := opt.DefaultValue.(string)
				if !ok || !ok2 {
					return fmt.Errorf("invalid string option %s", flagName)
				}
				fs.StringVar(dest, flagName, defVal, opt.Description)
			case PluginOptionTypeBool:
				dest, ok := opt.Dest.(*bool)
				defVal, ok2 := opt.DefaultValue.(bool)
				if !ok || !ok2 {
					return fmt.Errorf("invalid bool option %s", flagName)
				}
				fs.BoolVar(dest, flagName, defVal, opt.Description)
			case PluginOptionTypeInt:
				dest, ok := opt.Dest.(*int)
				defVal, ok2 := opt.DefaultValue.(int)
				if !ok || !ok2 {
					return fmt.Errorf("invalid int option %s", flagName)
				}
				fs.IntVar(dest, flagName, defVal, opt.Description)
			case PluginOptionTypeUint:
				dest, ok := opt.Dest.(*uint64)
				defVal, ok2 := opt.DefaultValue.(uint64)
				if !ok || !ok2 {
					return fmt.Errorf("invalid uint option %s", flagName)
				}
				fs.Uint64Var(dest, flagName, defVal, opt.Description)
			default:
				return fmt.Errorf("unknown plugin option type %d", opt.Type)
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin options from environment variables
func ProcessEnvVars() error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			envName := strings.ToUpper(
				strings.ReplaceAll(
					envVarPrefix+"_"+optionFlagName(p, opt),
					"-",
					"_",
				),
			)
			val, ok := os.LookupEnv(envName)
			if !ok {
				continue
			}
			if err := opt.assign(val); err != nil {
				return fmt.Errorf("environment variable %s: %w", envName, err)
			}
		}
	}
	return nil
}

// ProcessConfig applies plugin options from a config file. The map is keyed
// by plugin type name, then plugin name, then option name
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	for _, p := range pluginEntries {
		typeConfig, ok := pluginConfig[PluginTypeName(p.Type)]
		if !ok {
			continue
		}
		cfg, ok := typeConfig[p.Name]
		if !ok {
			continue
		}
		for _, opt := range p.Options {
			val, ok := cfg[opt.Name]
			if !ok {
				continue
			}
			if err := opt.assign(val); err != nil {
				return fmt.Errorf(
					"%s plugin %s: %w",
					PluginTypeName(p.Type),
					p.Name,
					err,
				)
			}
		}
	}
	return nil
}
