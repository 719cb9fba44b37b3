// Package scenario loads a scenario configuration file and drives the KVS
// engine through a named sequence of operations, logging one structured
// record per step the way the driver CLI's consumers expect.
package scenario

import (
	"fmt"

	"github.com/kvsdriver/kvs/internal/infra/confloader"
	"github.com/kvsdriver/kvs/internal/kvs/defaults"
	"github.com/kvsdriver/kvs/internal/kvs/kvserr"
)

// DefaultsMode names how a scenario's defaults file should be treated.
type DefaultsMode string

const (
	DefaultsOptional DefaultsMode = "optional"
	DefaultsRequired DefaultsMode = "required"
	DefaultsWithout  DefaultsMode = "without"
)

// Params mirrors the scenario file's "kvs_parameters" object.
type Params struct {
	InstanceID  uint32       `koanf:"instance_id"`
	Dir         string       `koanf:"dir"`
	Defaults    DefaultsMode `koanf:"defaults"`
	FlushOnExit bool         `koanf:"flush_on_exit"`
}

// Policy maps the scenario file's defaults mode onto the engine's
// Required/Optional policy. "without" scenarios simply never write a
// defaults file; Optional still applies so Open doesn't fail.
func (p Params) Policy() defaults.Policy {
	if p.Defaults == DefaultsRequired {
		return defaults.Required
	}
	return defaults.Optional
}

// Config is the full scenario file: instance parameters plus whatever
// scenario-specific fields that scenario family reads (count, snapshot_id).
type Config struct {
	KvsParameters Params `koanf:"kvs_parameters"`
	Count         int    `koanf:"count"`
	SnapshotID    uint32 `koanf:"snapshot_id"`
}

// Load reads and unmarshals a scenario configuration file.
func Load(path string) (Config, error) {
	var cfg Config
	loader := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := loader.Load(&cfg); err != nil {
		return Config{}, kvserr.Wrap(kvserr.KvsFileReadError, fmt.Sprintf("load scenario config %q", path), err)
	}
	return cfg, nil
}
