// cmd/iop/main.go
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/archangelsys/afc004-iop/internal/arinc/clock"
	"github.com/archangelsys/afc004-iop/internal/bootreport"
	"github.com/archangelsys/afc004-iop/internal/bootstrap"
	"github.com/archangelsys/afc004-iop/internal/config"
	"github.com/archangelsys/afc004-iop/internal/diagnostics"
	"github.com/archangelsys/afc004-iop/internal/gpio"
	"github.com/archangelsys/afc004-iop/internal/maintenance"
	"github.com/archangelsys/afc004-iop/internal/scheduler"
	"github.com/archangelsys/afc004-iop/internal/transceiver"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: iop <config.yaml>")
	}
	cfgPath := os.Args[1]

	// --------------------
	// Load + validate + normalize config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	setupLogging(cfg.IOP.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --------------------
	// Open transceiver channels and the ADC link
	// --------------------

	chA, err := transceiver.OpenSerialChannel("channel_a", serialConfig(cfg.IOP.Transceivers.ChannelA))
	if err != nil {
		log.Fatalf("open channel A failed: %v", err)
	}
	defer chA.Close()

	chB, err := transceiver.OpenSerialChannel("channel_b", serialConfig(cfg.IOP.Transceivers.ChannelB))
	if err != nil {
		log.Fatalf("open channel B failed: %v", err)
	}
	defer chB.Close()

	adcPort, err := transceiver.OpenSerialADCPort(serialConfig(cfg.IOP.ADCLink.Endpoint))
	if err != nil {
		log.Fatalf("open ADC link failed: %v", err)
	}
	defer adcPort.Close()

	// --------------------
	// GPIO fault/strap lines (ambient boot contract, §4.10)
	// --------------------

	var fault gpio.FaultPin
	if cfg.IOP.GPIO.FaultPinName != "" {
		fault, err = gpio.OpenFaultPin(cfg.IOP.GPIO.FaultPinName)
		if err != nil {
			log.Printf("fault pin unavailable, continuing without it: %v", err)
			fault = nil
		}
	}

	var strapOctal uint8
	if len(cfg.IOP.GPIO.StrapPinNames) > 0 {
		strap, err := gpio.OpenStrapReader(cfg.IOP.GPIO.StrapPinNames)
		if err != nil {
			log.Printf("strap pins unavailable, defaulting to normal mode: %v", err)
		} else if v, err := strap.ReadStrapOctal(); err == nil {
			strapOctal = v
		}
	}

	// --------------------
	// Bootstrap: self-tests, loopback, label filters, groups, engine
	// --------------------

	clk := clock.NewSystem()
	core, err := bootstrap.Build(cfg, clk, chA, chB, adcPort, nil)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	deviceID := diagnostics.DeviceID(cfg.IOP.DeviceID)

	// --------------------
	// Diagnostics sinks (ambient, §4.9)
	// --------------------

	var telemetry diagnostics.TelemetrySink = diagnostics.NoopSink{}
	if cfg.IOP.Diagnostics.MQTTBroker != "" {
		mqttSink := diagnostics.NewMQTTSink(cfg.IOP.Diagnostics.MQTTBroker, cfg.IOP.Diagnostics.MQTTTopic, deviceID)
		defer mqttSink.Close()
		telemetry = mqttSink
	}

	var history diagnostics.HistorySink
	if cfg.IOP.Diagnostics.HistoryDSN != "" {
		history, err = diagnostics.NewMySQLHistorySink(cfg.IOP.Diagnostics.HistoryDSN)
		if err != nil {
			log.Printf("history sink unavailable, continuing without it: %v", err)
			history = nil
		} else {
			defer history.Close()
		}
	}

	var faultSink diagnostics.FaultReporter = diagnostics.NoopFaultReporter{}
	if cfg.IOP.Diagnostics.FaultEmail.SMTPHost != "" {
		faultSink = diagnostics.NewEmailFaultReporter(
			cfg.IOP.Diagnostics.FaultEmail.SMTPHost,
			cfg.IOP.Diagnostics.FaultEmail.SMTPPort,
			cfg.IOP.Diagnostics.FaultEmail.Username,
			cfg.IOP.Diagnostics.FaultEmail.Password,
			cfg.IOP.Diagnostics.FaultEmail.From,
			cfg.IOP.Diagnostics.FaultEmail.To,
		)
	}

	trigger := &bootreport.Trigger{
		Core:       core,
		Clock:      clk,
		DeviceID:   deviceID,
		ProgramCRC: cfg.IOP.CRCKey,
		OutPath:    cfg.IOP.BootReportPath,
		FaultSink:  faultSink,
	}
	if err := trigger.TriggerBootReport("startup"); err != nil {
		log.Printf("boot report generation failed: %v", err)
	}

	publisher := diagnostics.NewPublisher(
		deviceID, clk,
		time.Duration(cfg.IOP.Diagnostics.IntervalMs)*time.Millisecond,
		telemetry, history,
		func() bool { return !core.NoBootFault },
		core.AHR, core.PFD, core.ADC,
	)

	// --------------------
	// Maintenance mode vs. normal scheduling (§4.10), all run under one
	// errgroup so a panic-free goroutine exit doesn't go unnoticed.
	// --------------------

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error { publisher.Run(gctx); return nil })

	if cfg.IOP.Maintenance.Enabled && strapOctal == cfg.IOP.Maintenance.StrapOctal {
		log.Printf("strap word %#o selects maintenance mode", strapOctal)
		sh := maintenance.New(core, trigger)
		grp.Go(func() error { sh.Run(); return nil })
	}

	sched := scheduler.New(core, fault)
	grp.Go(func() error { sched.Run(gctx); return nil })

	// --------------------
	// Block until signalled
	// --------------------

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	cancel()
	_ = grp.Wait()
}

// setupLogging routes process output through stdout and, if a log directory
// is configured, a size/age-rotated file, per the reference pack's
// lumberjack-backed daemon logging setup.
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Directory == "" {
		return
	}
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		log.Printf("log directory unavailable, logging to stdout only: %v", err)
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Directory, "afc004-iop.log"),
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

func serialConfig(ep config.SerialEndpoint) transceiver.SerialConfig {
	return transceiver.SerialConfig{
		Address:  ep.Address,
		BaudRate: ep.BaudRate,
		DataBits: ep.DataBits,
		StopBits: ep.StopBits,
		Parity:   ep.Parity,
	}
}
