package cpu

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SimConfig is the human-edited configuration for cmd/autd3cpu-sim. Only
// Transducers is applied; ModFreqDiv, SilencerStep and SilencerCycle are
// loaded and saved but not used, since Clear always installs
// DefaultModFreqDiv, DefaultSilentStep and DefaultSilentCycle. Adapted from
// gocat's pkg/config.DeviceConfig load/save pair, switched from JSON to
// YAML since this file is hand-authored rather than a machine-dumped
// device snapshot (those stay JSON, see pkg/trace).
type SimConfig struct {
	Transducers   int    `yaml:"transducers"`
	ModFreqDiv    uint32 `yaml:"mod_freq_div"`
	SilencerStep  uint16 `yaml:"silencer_step"`
	SilencerCycle uint16 `yaml:"silencer_cycle"`
}

// DefaultSimConfig returns a configuration carrying the values Clear
// installs (spec.md section 4.12), for a 249-transducer array (the array size
// used throughout spec.md section 8's end-to-end scenarios).
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Transducers:   249,
		ModFreqDiv:    DefaultModFreqDiv,
		SilencerStep:  DefaultSilentStep,
		SilencerCycle: DefaultSilentCycle,
	}
}

// LoadSimConfig reads a SimConfig from a YAML file.
func LoadSimConfig(path string) (SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SimConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := DefaultSimConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SimConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// SaveSimConfig writes cfg to path as YAML.
func SaveSimConfig(cfg SimConfig, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
