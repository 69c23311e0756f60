// Package config holds the Round State Machine's timeout policy (§4.3),
// loadable from YAML the way sanketsaagar-Litechain and
// REChain-Network-Solutions-DeCub configure their nodes.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the per-height-driver timeout policy. Nominal timeouts are
// expected to be large (hours to days) since Vetomint validators are
// intermittently online; they back liveness only, never safety (§4.3).
type Config struct {
	// TimeoutBase is T_base, the round-0 timeout.
	TimeoutBase time.Duration `yaml:"timeoutBase"`
	// TimeoutIncrement is T_inc, added per round: T(r) = T_base + r*T_inc.
	TimeoutIncrement time.Duration `yaml:"timeoutIncrement"`
}

// Default mirrors the teacher's package-level default-config-var convention
// (eth/ethconfig.FullNodeGPO): a day-scale base timeout with a modest
// per-round backoff, suitable for a permissioned chain whose validators are
// not expected to be continuously online.
var Default = Config{
	TimeoutBase:      24 * time.Hour,
	TimeoutIncrement: 1 * time.Hour,
}

// Timeout returns T(r) = T_base + r*T_inc for round r.
func (c Config) Timeout(round int64) time.Duration {
	if round < 0 {
		round = 0
	}
	return c.TimeoutBase + time.Duration(round)*c.TimeoutIncrement
}

// Load reads a Config from a YAML file at path, falling back to Default for
// any field the file doesn't set.
func Load(path string) (Config, error) {
	cfg := Default
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
