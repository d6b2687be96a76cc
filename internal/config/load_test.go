// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
iop:
  filter:
    k1: 0.7777678
    k2: 0.2222322
  differentiator:
    k1: 0.99
    sample_rate_hz: 50
    upper_limit: 180
    lower_limit: -180
    upper_delta: 360
    lower_delta: -360
  transceivers:
    channel_a:
      address: /dev/ttyS0
      baud_rate: 115200
    channel_b:
      address: /dev/ttyS1
      baud_rate: 115200
  adc_link:
    endpoint:
      address: /dev/ttyS2
      baud_rate: 57600
  crc_key: 0x04C11DB7
  device_id: unit-1
`

func TestLoad_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iop.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write sample config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IOP.Transceivers.ChannelA.Address != "/dev/ttyS0" {
		t.Fatalf("channel_a address = %q", cfg.IOP.Transceivers.ChannelA.Address)
	}
	if cfg.IOP.DeviceID != "unit-1" {
		t.Fatalf("device_id = %q", cfg.IOP.DeviceID)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoad_InvalidYAMLReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("iop: [this is not a map"), 0o644); err != nil {
		t.Fatalf("write bad config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
