// Command smt100-monitor runs a measurement cycle against one or more
// SMT100 soil moisture sensors on a shared Modbus RTU bus.
//
// Every cycle it reads temperature, water content, and permittivity
// from each configured sensor. On any communication failure it logs the
// error, reconnects the shared serial link once, and continues the
// cycle regardless of the reconnect outcome. The loop never terminates
// on communication errors; stop it with SIGINT or SIGTERM.
//
// Usage:
//
//	# single sensor from flags
//	smt100-monitor -port /dev/ttyUSB0 -slave 1
//
//	# several sensors from a config file, with a bus trace
//	smt100-monitor -config smt100.yaml -trace bus.strace -verbose
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/truebner/smt100-go/internal/config"
	"github.com/truebner/smt100-go/pkg/bus"
	"github.com/truebner/smt100-go/pkg/buslog"
	"github.com/truebner/smt100-go/pkg/rtu"
	"github.com/truebner/smt100-go/pkg/sensor"
	"github.com/truebner/smt100-go/pkg/version"
)

type sensorEntry struct {
	name  string
	proxy *sensor.SlaveProxy
}

func main() {
	configPath := flag.String("config", "", "YAML config file (overrides -port/-slave)")
	port := flag.String("port", "", "serial device path, e.g. /dev/ttyUSB0")
	slave := flag.Uint("slave", 1, "Modbus slave address (1..247)")
	cycle := flag.Duration("cycle", time.Second, "measurement cycle time")
	timeout := flag.Duration("timeout", 500*time.Millisecond, "per-request timeout")
	trace := flag.String("trace", "", "write bus trace to this file")
	verbose := flag.Bool("verbose", false, "log bus events to console")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("smt100-monitor", version.Current)
		return
	}

	cfg, err := loadConfig(*configPath, *port, *slave, *cycle, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	busLogger, closeTrace, err := buildBusLogger(*trace, *verbose, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeTrace()

	session := bus.NewManager(
		rtu.Connector(rtu.Config{Path: cfg.Port, Timeout: cfg.Timeout()}),
		bus.WithLogger(busLogger),
		bus.WithPort(cfg.Port),
	)
	defer session.Close()

	var sensors []sensorEntry
	for _, sc := range cfg.Sensors {
		proxy, err := sensor.NewSlaveProxy(bus.SlaveAddress(sc.Slave), session, sensor.WithLogger(busLogger))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: sensor %s: %v\n", sc.Name, err)
			os.Exit(1)
		}
		sensors = append(sensors, sensorEntry{name: sc.Name, proxy: proxy})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting", "port", cfg.Port, "sensors", len(sensors))
	if err := session.Reconnect(ctx); err != nil {
		// Keep cycling; the recovery path retries the connection.
		logger.Warn("initial connect failed", "error", err)
	}

	runLoop(ctx, logger, session, sensors, cfg.Cycle(), cfg.Timeout())
	logger.Info("shutting down")
}

// loadConfig builds the effective configuration from the config file or,
// absent one, from the single-sensor flags.
func loadConfig(path, port string, slave uint, cycle, timeout time.Duration) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	if port == "" {
		return nil, fmt.Errorf("either -config or -port is required")
	}
	cfg := &config.Config{
		Port:      port,
		CycleMs:   int(cycle / time.Millisecond),
		TimeoutMs: int(timeout / time.Millisecond),
		Sensors:   []config.SensorConfig{{Name: fmt.Sprintf("slave-%d", slave), Slave: uint8(slave)}},
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildBusLogger assembles the trace sink from the -trace and -verbose
// flags. The returned func closes the trace file, if any.
func buildBusLogger(trace string, verbose bool, logger *slog.Logger) (buslog.Logger, func(), error) {
	var sinks []buslog.Logger
	closeTrace := func() {}

	if trace != "" {
		fileLogger, err := buslog.NewFileLogger(trace)
		if err != nil {
			return nil, nil, fmt.Errorf("opening trace file: %w", err)
		}
		sinks = append(sinks, fileLogger)
		closeTrace = func() { fileLogger.Close() }
	}
	if verbose {
		sinks = append(sinks, buslog.NewSlogAdapter(logger))
	}

	switch len(sinks) {
	case 0:
		return buslog.NoopLogger{}, closeTrace, nil
	case 1:
		return sinks[0], closeTrace, nil
	default:
		return buslog.NewMultiLogger(sinks...), closeTrace, nil
	}
}

// runLoop cycles measurements until ctx is cancelled. Communication
// failures trigger one reconnect attempt and never terminate the loop.
func runLoop(ctx context.Context, logger *slog.Logger, session *bus.Manager, sensors []sensorEntry, cycle, timeout time.Duration) {
	ticker := time.NewTicker(cycle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for _, s := range sensors {
			if err := measure(ctx, logger, s, timeout); err != nil {
				logger.Warn("measurement failed, reconnecting", "sensor", s.name, "error", err)
				if err := session.Reconnect(ctx); err != nil {
					// Keep cycling; the next failure will retry.
					logger.Error("reconnect failed", "error", err)
				}
				break
			}
		}
	}
}

// measure reads one full measurement set from a sensor.
func measure(ctx context.Context, logger *slog.Logger, s sensorEntry, timeout time.Duration) error {
	readCtx, cancel := context.WithTimeout(ctx, timeout)
	temp, err := s.proxy.ReadTemperature(readCtx)
	cancel()
	if err != nil {
		return err
	}

	readCtx, cancel = context.WithTimeout(ctx, timeout)
	vwc, err := s.proxy.ReadWaterContent(readCtx)
	cancel()
	if err != nil {
		return err
	}

	readCtx, cancel = context.WithTimeout(ctx, timeout)
	ratio, err := s.proxy.ReadPermittivity(readCtx)
	cancel()
	if err != nil {
		return err
	}

	logger.Info("measurement",
		"sensor", s.name,
		"temperature", temp.String(),
		"water_content", vwc.String(),
		"permittivity", ratio.String(),
	)
	return nil
}
