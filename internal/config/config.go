// Package config loads and validates the YAML configuration block (§6):
// filter/differentiator coefficients, transceiver and ADC-link serial
// endpoints, per-group bus-failure overrides, and the diagnostics/
// maintenance ambient settings. Grounded directly on the reference
// config.go/validate.go/normalize.go split: declarative validation with no
// mutation, followed by a separate normalization pass.
package config

// Config is the root YAML document.
type Config struct {
	IOP IOPConfig `yaml:"iop"`
}

// IOPConfig is the top-level processor configuration.
type IOPConfig struct {
	Filter         FilterConfig         `yaml:"filter"`
	Differentiator DifferentiatorConfig `yaml:"differentiator"`
	Transceivers   TransceiverConfig    `yaml:"transceivers"`
	ADCLink        ADCLinkConfig        `yaml:"adc_link"`
	Groups         []GroupConfig        `yaml:"groups"`
	Diagnostics    DiagnosticsConfig    `yaml:"diagnostics"`
	Maintenance    MaintenanceConfig    `yaml:"maintenance"`
	GPIO           GPIOConfig           `yaml:"gpio"`
	Logging        LoggingConfig        `yaml:"logging"`
	CRCKey         uint32               `yaml:"crc_key"`
	DeviceID       string               `yaml:"device_id"`
	BootReportPath string               `yaml:"boot_report_path"`
}

// LoggingConfig names the rotated log file the process writes to alongside
// stdout. Directory left empty disables file rotation.
type LoggingConfig struct {
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// GPIOConfig names the ambient fault-output pin and the strap-input pins
// read once at boot to select maintenance mode (§4.10, §6).
type GPIOConfig struct {
	FaultPinName  string   `yaml:"fault_pin_name"`
	StrapPinNames []string `yaml:"strap_pin_names"`
}

// FilterConfig carries the IIR low-pass coefficients (§6 config block).
type FilterConfig struct {
	K1 float64 `yaml:"k1"`
	K2 float64 `yaml:"k2"`
}

// DifferentiatorConfig carries the rate-limited differentiator parameters.
type DifferentiatorConfig struct {
	K1           float64 `yaml:"k1"`
	SampleRateHz float64 `yaml:"sample_rate_hz"`
	UpperLimit   float64 `yaml:"upper_limit"`
	LowerLimit   float64 `yaml:"lower_limit"`
	UpperDelta   float64 `yaml:"upper_delta"`
	LowerDelta   float64 `yaml:"lower_delta"`
}

// SerialEndpoint names a serial device and its line settings.
type SerialEndpoint struct {
	Address  string `yaml:"address"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"`
}

// TransceiverConfig names the two ARINC-429 transceiver bridge endpoints.
type TransceiverConfig struct {
	ChannelA SerialEndpoint `yaml:"channel_a"`
	ChannelB SerialEndpoint `yaml:"channel_b"`
}

// ADCLinkConfig names the RS-422 endpoint to the air data computer.
type ADCLinkConfig struct {
	Endpoint SerialEndpoint `yaml:"endpoint"`

	// ComputedDataFrameLen is the fixed byte length of an ADC
	// computed-data/status frame (§4.8: "at configured lengths"), a
	// multiple of 4 since each frame packs whole little-endian ARINC
	// words.
	ComputedDataFrameLen int `yaml:"computed_data_frame_len"`
}

// GroupConfig overrides the bus-failure threshold for one of the
// code-defined label groups (ahr75, pfd, adc). The label tables themselves
// are not YAML-driven; they are the fixed avionics interface definition.
type GroupConfig struct {
	Name                string `yaml:"name"`
	MaxBusFailureCounts uint32 `yaml:"max_bus_failure_counts"`
}

// EmailConfig is the outbound SMTP endpoint used for a latched-fault
// report.
type EmailConfig struct {
	SMTPHost string   `yaml:"smtp_host"`
	SMTPPort int      `yaml:"smtp_port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// DiagnosticsConfig configures the ambient telemetry/history/fault-report
// sinks (§4.9). Any field left at its zero value disables that sink.
type DiagnosticsConfig struct {
	IntervalMs int         `yaml:"interval_ms"`
	MQTTBroker string      `yaml:"mqtt_broker"`
	MQTTTopic  string      `yaml:"mqtt_topic"`
	HistoryDSN string      `yaml:"history_dsn"`
	FaultEmail EmailConfig `yaml:"fault_email"`
}

// MaintenanceConfig controls the strap-selected interactive shell (§4.10).
type MaintenanceConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ListenAddr  string `yaml:"listen_addr"`
	StrapOctal  uint8  `yaml:"strap_octal"`
}
