/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"sigs.k8s.io/yaml"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "ATTACHOPT_"

// LoadFile decodes the configuration file at path into cfg. The format follows
// the extension: .yaml, .yml and .json are read as YAML, .toml as TOML.
// Unknown keys are rejected.
func LoadFile(path string, cfg *ExperimentConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown keys in %s: %v", path, undecoded)
		}
	default:
		return fmt.Errorf("unsupported config file extension %q", ext)
	}
	return nil
}

// ApplyEnv overrides cfg with every ATTACHOPT_* variable that is set.
func ApplyEnv(cfg *ExperimentConfig) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}

// Load builds a configuration from defaults, an optional file and the
// environment, in that order of increasing precedence. Flags are applied by
// the caller on top of the result.
func Load(path string) (*ExperimentConfig, error) {
	cfg := &ExperimentConfig{}
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	SetDefaults_ExperimentConfig(cfg)
	return cfg, nil
}
