// internal/config/validate.go
package config

import "fmt"

// knownGroups is the fixed set of code-defined receive groups a
// GroupConfig override may name.
var knownGroups = map[string]bool{
	"ahr75": true,
	"pfd":   true,
	"adc":   true,
}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.IOP.Filter.K1 == 0 && cfg.IOP.Filter.K2 == 0 {
		return fmt.Errorf("config: iop.filter: k1 and k2 must not both be zero")
	}
	if cfg.IOP.Differentiator.SampleRateHz <= 0 {
		return fmt.Errorf("config: iop.differentiator: sample_rate_hz must be positive, got %f", cfg.IOP.Differentiator.SampleRateHz)
	}
	if cfg.IOP.Differentiator.UpperLimit < cfg.IOP.Differentiator.LowerLimit {
		return fmt.Errorf("config: iop.differentiator: upper_limit %f < lower_limit %f",
			cfg.IOP.Differentiator.UpperLimit, cfg.IOP.Differentiator.LowerLimit)
	}
	if cfg.IOP.Differentiator.UpperDelta < cfg.IOP.Differentiator.LowerDelta {
		return fmt.Errorf("config: iop.differentiator: upper_delta %f < lower_delta %f",
			cfg.IOP.Differentiator.UpperDelta, cfg.IOP.Differentiator.LowerDelta)
	}

	if err := validateEndpoint("iop.transceivers.channel_a", cfg.IOP.Transceivers.ChannelA); err != nil {
		return err
	}
	if err := validateEndpoint("iop.transceivers.channel_b", cfg.IOP.Transceivers.ChannelB); err != nil {
		return err
	}
	if err := validateEndpoint("iop.adc_link.endpoint", cfg.IOP.ADCLink.Endpoint); err != nil {
		return err
	}
	if n := cfg.IOP.ADCLink.ComputedDataFrameLen; n != 0 && n%4 != 0 {
		return fmt.Errorf("config: iop.adc_link.computed_data_frame_len %d must be a multiple of 4", n)
	}

	seen := map[string]bool{}
	for i, g := range cfg.IOP.Groups {
		if !knownGroups[g.Name] {
			return fmt.Errorf("config: iop.groups[%d]: unknown group name %q", i, g.Name)
		}
		if seen[g.Name] {
			return fmt.Errorf("config: iop.groups[%d]: duplicate group name %q", i, g.Name)
		}
		seen[g.Name] = true
		if g.MaxBusFailureCounts == 0 {
			return fmt.Errorf("config: iop.groups[%d]: max_bus_failure_counts must be positive", i)
		}
	}

	if cfg.IOP.Diagnostics.IntervalMs < 0 {
		return fmt.Errorf("config: iop.diagnostics.interval_ms must not be negative")
	}

	if cfg.IOP.Maintenance.Enabled && cfg.IOP.Maintenance.ListenAddr == "" {
		return fmt.Errorf("config: iop.maintenance.listen_addr required when maintenance.enabled is true")
	}

	return nil
}

func validateEndpoint(path string, ep SerialEndpoint) error {
	if ep.Address == "" {
		return fmt.Errorf("config: %s.address required", path)
	}
	if ep.BaudRate <= 0 {
		return fmt.Errorf("config: %s.baud_rate must be positive", path)
	}
	return nil
}
