// Command smt100-mqtt bridges SMT100 measurements to an MQTT broker.
//
// It runs the same measurement cycle as smt100-monitor and publishes
// each sensor's readings as a JSON message to
// <topic_prefix>/<sensor-name>. Communication failures on the serial
// bus trigger one reconnect and never terminate the bridge; stop it
// with SIGINT or SIGTERM.
//
// Usage:
//
//	smt100-mqtt -config smt100.yaml
//
// The config file must carry an mqtt section:
//
//	mqtt:
//	  broker: tcp://broker.example:1883
//	  client_id: smt100-bridge
//	  topic_prefix: soil
//	  qos: 1
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/truebner/smt100-go/internal/config"
	"github.com/truebner/smt100-go/pkg/bus"
	"github.com/truebner/smt100-go/pkg/buslog"
	"github.com/truebner/smt100-go/pkg/rtu"
	"github.com/truebner/smt100-go/pkg/sensor"
	"github.com/truebner/smt100-go/pkg/version"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// measurement is the JSON telemetry payload, one per sensor per cycle.
type measurement struct {
	Sensor       string  `json:"sensor"`
	Timestamp    string  `json:"timestamp"`
	Temperature  float64 `json:"temperature_celsius"`
	WaterContent float64 `json:"water_content_percent"`
	Permittivity float64 `json:"permittivity"`
}

type bridgeSensor struct {
	name  string
	topic string
	proxy *sensor.SlaveProxy
}

func main() {
	configPath := flag.String("config", "", "YAML config file (required)")
	verbose := flag.Bool("verbose", false, "log bus events to console")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("smt100-mqtt", version.Current)
		return
	}

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.MQTT == nil {
		fmt.Fprintf(os.Stderr, "Error: %s: mqtt section is required\n", *configPath)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var busLogger buslog.Logger = buslog.NoopLogger{}
	if cfg.Trace != "" {
		fileLogger, err := buslog.NewFileLogger(cfg.Trace)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening trace file: %v\n", err)
			os.Exit(1)
		}
		defer fileLogger.Close()
		busLogger = fileLogger
	}

	client, err := connectBroker(cfg.MQTT)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: connecting to broker %s: %v\n", cfg.MQTT.Broker, err)
		os.Exit(1)
	}
	defer client.Disconnect(250)

	session := bus.NewManager(
		rtu.Connector(rtu.Config{Path: cfg.Port, Timeout: cfg.Timeout()}),
		bus.WithLogger(busLogger),
		bus.WithPort(cfg.Port),
	)
	defer session.Close()

	prefix := cfg.MQTT.TopicPrefix
	if prefix == "" {
		prefix = "smt100"
	}

	var sensors []bridgeSensor
	for _, sc := range cfg.Sensors {
		proxy, err := sensor.NewSlaveProxy(bus.SlaveAddress(sc.Slave), session, sensor.WithLogger(busLogger))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: sensor %s: %v\n", sc.Name, err)
			os.Exit(1)
		}
		sensors = append(sensors, bridgeSensor{
			name:  sc.Name,
			topic: prefix + "/" + sc.Name,
			proxy: proxy,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("bridge starting",
		"port", cfg.Port, "broker", cfg.MQTT.Broker, "sensors", len(sensors))
	if err := session.Reconnect(ctx); err != nil {
		logger.Warn("initial connect failed", "error", err)
	}

	runBridge(ctx, logger, client, session, sensors, cfg)
	logger.Info("shutting down")
}

// connectBroker dials the MQTT broker per the config.
func connectBroker(cfg *config.MQTTConfig) (mqtt.Client, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "smt100-mqtt"
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetKeepAlive(30 * time.Second).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOrderMatters(false)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if ok := token.WaitTimeout(connectTimeout); !ok {
		return nil, fmt.Errorf("connect timed out after %s", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, err
	}
	return client, nil
}

// runBridge cycles measurements and publishes them until ctx is
// cancelled. Bus failures trigger one reconnect and never stop the
// bridge.
func runBridge(ctx context.Context, logger *slog.Logger, client mqtt.Client, session *bus.Manager, sensors []bridgeSensor, cfg *config.Config) {
	ticker := time.NewTicker(cfg.Cycle())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for _, s := range sensors {
			m, err := measureSensor(ctx, s, cfg.Timeout())
			if err != nil {
				logger.Warn("measurement failed, reconnecting", "sensor", s.name, "error", err)
				if err := session.Reconnect(ctx); err != nil {
					logger.Error("reconnect failed", "error", err)
				}
				break
			}

			if err := publish(client, cfg.MQTT.QoS, s.topic, m); err != nil {
				// The paho client buffers and reconnects on its own;
				// drop the sample and keep measuring.
				logger.Warn("publish failed", "sensor", s.name, "error", err)
				continue
			}
			logger.Debug("published", "topic", s.topic,
				"temperature", m.Temperature, "water_content", m.WaterContent)
		}
	}
}

// measureSensor reads one full measurement set from a sensor.
func measureSensor(ctx context.Context, s bridgeSensor, timeout time.Duration) (measurement, error) {
	readCtx, cancel := context.WithTimeout(ctx, timeout)
	temp, err := s.proxy.ReadTemperature(readCtx)
	cancel()
	if err != nil {
		return measurement{}, err
	}

	readCtx, cancel = context.WithTimeout(ctx, timeout)
	vwc, err := s.proxy.ReadWaterContent(readCtx)
	cancel()
	if err != nil {
		return measurement{}, err
	}

	readCtx, cancel = context.WithTimeout(ctx, timeout)
	ratio, err := s.proxy.ReadPermittivity(readCtx)
	cancel()
	if err != nil {
		return measurement{}, err
	}

	return measurement{
		Sensor:       s.name,
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
		Temperature:  temp.DegreeCelsius(),
		WaterContent: vwc.Percent(),
		Permittivity: ratio.Ratio(),
	}, nil
}

// publish sends one measurement to the broker.
func publish(client mqtt.Client, qos uint8, topic string, m measurement) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	token := client.Publish(topic, qos, false, payload)
	if ok := token.WaitTimeout(publishTimeout); !ok {
		return fmt.Errorf("publish timed out after %s", publishTimeout)
	}
	return token.Error()
}
