// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package config loads dsh's ambient settings file
// (~/.config/dsh/settings.yaml), distinct from the scriptable
// ~/.config/dsh/config.lisp startup facade, which is an external
// collaborator this package knows nothing about.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// Type is the in-memory representation of the loaded configuration.
type Type struct {
	Source string
	Data   map[string]interface{}
}

// Config holds the global, lazily-initialized configuration instance.
var Config Type

func init() {
	_, _ = Load()
}

// GetInt returns the integer value for the given dotted key path. A single
// defaultValue may be provided and is returned when the key is missing.
func GetInt(key string, defaultValue ...int) (int, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, errors.New("value is not an int")
	}
}

// GetFloat64 returns the float value for the given dotted key path.
func GetFloat64(key string, defaultValue ...float64) (float64, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	switch v := val.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, errors.New("value is not a float")
	}
}

// GetBool returns the bool value for the given dotted key path.
func GetBool(key string, defaultValue ...bool) (bool, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return false, err
	}

	b, ok := val.(bool)
	if !ok {
		return false, errors.New("value is not a bool")
	}
	return b, nil
}

// GetString returns the string value for the given dotted key path. If the
// key is not found and a single defaultValue is provided, the default is
// returned.
func GetString(key string, defaultValue ...string) (string, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", errors.New("value is not a string")
	}

	return s, nil
}

// GetStringSlice returns the string slice value for the given dotted key
// path. If the key is not found and a single default slice is provided, that
// default is returned.
func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	val, err := Config.get(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return nil, err
	}

	switch v := val.(type) {
	case []string:
		return v, nil
	case []interface{}:
		result := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.New("slice element is not a string")
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, errors.New("value is not a slice")
	}
}

// Load reads the YAML settings file from the standard XDG config directory
// and populates the global Config. Absence of the file is not an error: dsh
// runs fine on defaults alone.
func Load() (Type, error) {
	path, err := settingsFile()
	if err != nil {
		Config = Type{}
		return Config, nil //nolint:nilerr
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		Config = Type{}
		return Config, nil //nolint:nilerr
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Type{}, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	Config = Type{Source: path, Data: data}
	return Config, nil
}

// get traverses the configuration tree using a dotted key path (e.g.
// "history.half_life_hours").
func (cfg *Type) get(kspec string) (any, error) {
	keys := strings.Split(kspec, ".")
	var current interface{} = cfg.Data

	for _, key := range keys {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("no value at path: %s", kspec)
		}
		current, ok = m[key]
		if !ok {
			return nil, fmt.Errorf("no value at path: %s", kspec)
		}
	}

	return current, nil
}

// settingsFile returns the absolute path to the YAML settings file. DSH_CFG_FILE
// overrides the standard XDG location (~/.config/dsh/settings.yaml).
func settingsFile() (string, error) {
	if p := os.Getenv("DSH_CFG_FILE"); p != "" {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			log.Debugf("using settings file from DSH_CFG_FILE: %s", p)
			return p, nil
		}
		return "", fmt.Errorf("DSH_CFG_FILE does not point to a readable file: %s", p)
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	file := filepath.Join(dir, "dsh", "settings.yaml")
	if fi, err := os.Stat(file); err == nil && !fi.IsDir() {
		log.Debugf("using settings file: %s", file)
		return file, nil
	}

	return "", fmt.Errorf("no settings file found at %s", file)
}
