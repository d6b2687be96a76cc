// internal/config/validate_test.go
package config

import "testing"

func baseConfig() *Config {
	return &Config{
		IOP: IOPConfig{
			Filter: FilterConfig{K1: 0.9, K2: 0.1},
			Differentiator: DifferentiatorConfig{
				K1:           1.0,
				SampleRateHz: 100,
				UpperLimit:   200,
				LowerLimit:   -200,
				UpperDelta:   50,
				LowerDelta:   -50,
			},
			Transceivers: TransceiverConfig{
				ChannelA: SerialEndpoint{Address: "/dev/ttyS0", BaudRate: 115200},
				ChannelB: SerialEndpoint{Address: "/dev/ttyS1", BaudRate: 115200},
			},
			ADCLink: ADCLinkConfig{
				Endpoint: SerialEndpoint{Address: "/dev/ttyS2", BaudRate: 57600},
			},
			Groups: []GroupConfig{
				{Name: "ahr75", MaxBusFailureCounts: 200},
				{Name: "pfd", MaxBusFailureCounts: 200},
			},
		},
	}
}

func TestValidate_BaseConfigOK(t *testing.T) {
	if err := Validate(baseConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_FilterBothZeroRejected(t *testing.T) {
	cfg := baseConfig()
	cfg.IOP.Filter = FilterConfig{}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for k1==k2==0")
	}
}

func TestValidate_NonPositiveSampleRateRejected(t *testing.T) {
	cfg := baseConfig()
	cfg.IOP.Differentiator.SampleRateHz = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for sample_rate_hz <= 0")
	}
}

func TestValidate_InvertedLimitsRejected(t *testing.T) {
	cfg := baseConfig()
	cfg.IOP.Differentiator.UpperLimit = -1
	cfg.IOP.Differentiator.LowerLimit = 1
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for upper_limit < lower_limit")
	}
}

func TestValidate_InvertedDeltasRejected(t *testing.T) {
	cfg := baseConfig()
	cfg.IOP.Differentiator.UpperDelta = -1
	cfg.IOP.Differentiator.LowerDelta = 1
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for upper_delta < lower_delta")
	}
}

func TestValidate_MissingEndpointAddressRejected(t *testing.T) {
	cfg := baseConfig()
	cfg.IOP.Transceivers.ChannelA.Address = ""
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for missing channel_a address")
	}
}

func TestValidate_NonPositiveBaudRateRejected(t *testing.T) {
	cfg := baseConfig()
	cfg.IOP.ADCLink.Endpoint.BaudRate = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for non-positive baud_rate")
	}
}

func TestValidate_UnknownGroupNameRejected(t *testing.T) {
	cfg := baseConfig()
	cfg.IOP.Groups = append(cfg.IOP.Groups, GroupConfig{Name: "bogus", MaxBusFailureCounts: 1})
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for unknown group name")
	}
}

func TestValidate_DuplicateGroupNameRejected(t *testing.T) {
	cfg := baseConfig()
	cfg.IOP.Groups = append(cfg.IOP.Groups, GroupConfig{Name: "ahr75", MaxBusFailureCounts: 1})
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for duplicate group name")
	}
}

func TestValidate_ZeroBusFailureThresholdRejected(t *testing.T) {
	cfg := baseConfig()
	cfg.IOP.Groups[0].MaxBusFailureCounts = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for zero max_bus_failure_counts")
	}
}

func TestValidate_NegativeDiagnosticsIntervalRejected(t *testing.T) {
	cfg := baseConfig()
	cfg.IOP.Diagnostics.IntervalMs = -1
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for negative diagnostics interval")
	}
}

func TestValidate_MaintenanceEnabledWithoutListenAddrRejected(t *testing.T) {
	cfg := baseConfig()
	cfg.IOP.Maintenance.Enabled = true
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error for maintenance.enabled without listen_addr")
	}
}

func TestValidate_MaintenanceEnabledWithListenAddrOK(t *testing.T) {
	cfg := baseConfig()
	cfg.IOP.Maintenance.Enabled = true
	cfg.IOP.Maintenance.ListenAddr = ":2323"
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
