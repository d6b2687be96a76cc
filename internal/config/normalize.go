// internal/config/normalize.go
package config

const defaultDiagnosticsIntervalMs = 1000

// defaultComputedDataFrameLen packs 5 little-endian ARINC words per ADC
// computed-data/status frame.
const defaultComputedDataFrameLen = 20

const defaultBootReportPath = "afc004-iop-boot-report.pdf"

const (
	defaultLogMaxSizeMB  = 50
	defaultLogMaxAgeDays = 30
	defaultLogMaxBackups = 5
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.IOP.Diagnostics.IntervalMs == 0 {
		cfg.IOP.Diagnostics.IntervalMs = defaultDiagnosticsIntervalMs
	}

	if cfg.IOP.Transceivers.ChannelA.DataBits == 0 {
		cfg.IOP.Transceivers.ChannelA.DataBits = 8
	}
	if cfg.IOP.Transceivers.ChannelB.DataBits == 0 {
		cfg.IOP.Transceivers.ChannelB.DataBits = 8
	}
	if cfg.IOP.ADCLink.Endpoint.DataBits == 0 {
		cfg.IOP.ADCLink.Endpoint.DataBits = 8
	}
	if cfg.IOP.Transceivers.ChannelA.StopBits == 0 {
		cfg.IOP.Transceivers.ChannelA.StopBits = 1
	}
	if cfg.IOP.Transceivers.ChannelB.StopBits == 0 {
		cfg.IOP.Transceivers.ChannelB.StopBits = 1
	}
	if cfg.IOP.ADCLink.Endpoint.StopBits == 0 {
		cfg.IOP.ADCLink.Endpoint.StopBits = 1
	}
	if cfg.IOP.ADCLink.ComputedDataFrameLen == 0 {
		cfg.IOP.ADCLink.ComputedDataFrameLen = defaultComputedDataFrameLen
	}
	if cfg.IOP.BootReportPath == "" {
		cfg.IOP.BootReportPath = defaultBootReportPath
	}

	if cfg.IOP.Logging.Directory != "" {
		if cfg.IOP.Logging.MaxSizeMB == 0 {
			cfg.IOP.Logging.MaxSizeMB = defaultLogMaxSizeMB
		}
		if cfg.IOP.Logging.MaxAgeDays == 0 {
			cfg.IOP.Logging.MaxAgeDays = defaultLogMaxAgeDays
		}
		if cfg.IOP.Logging.MaxBackups == 0 {
			cfg.IOP.Logging.MaxBackups = defaultLogMaxBackups
		}
	}
}

// GroupOverride looks up a bus-failure-count override for the named group,
// returning ok=false if none was configured.
func (c *Config) GroupOverride(name string) (uint32, bool) {
	for _, g := range c.IOP.Groups {
		if g.Name == name {
			return g.MaxBusFailureCounts, true
		}
	}
	return 0, false
}
