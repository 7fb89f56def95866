// Command smt100-provision assigns a Modbus slave address to an SMT100
// sensor via the broadcast identifier.
//
// The address write is broadcast: every device on the bus adopts the new
// address. Connect exactly ONE sensor before running this, and confirm
// with -yes.
//
// Usage:
//
//	smt100-provision -port /dev/ttyUSB0 -address 3 -yes
//
// Exit codes: 1 usage error, 2 connect failure, 3 write failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/truebner/smt100-go/pkg/bus"
	"github.com/truebner/smt100-go/pkg/rtu"
	"github.com/truebner/smt100-go/pkg/sensor"
)

func main() {
	port := flag.String("port", "", "serial device path, e.g. /dev/ttyUSB0")
	address := flag.Uint("address", 0, "new slave address (1..247)")
	timeout := flag.Duration("timeout", 2*time.Second, "write timeout")
	yes := flag.Bool("yes", false, "acknowledge that only one sensor is connected")
	flag.Parse()

	if *port == "" {
		fmt.Fprintln(os.Stderr, "Error: -port is required")
		flag.Usage()
		os.Exit(1)
	}
	if !bus.SlaveAddress(*address).Device() {
		fmt.Fprintf(os.Stderr, "Error: -address must be in %d..%d, got %d\n",
			bus.MinDeviceAddress, bus.MaxDeviceAddress, *address)
		os.Exit(1)
	}
	if !*yes {
		fmt.Fprintln(os.Stderr, "Error: the address write reaches EVERY device on the bus.")
		fmt.Fprintln(os.Stderr, "Connect exactly one sensor, then re-run with -yes.")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	session := bus.NewManager(rtu.Connector(rtu.Config{Path: *port, Timeout: *timeout}))
	defer session.Close()

	if err := session.Reconnect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: connecting to %s: %v\n", *port, err)
		os.Exit(2)
	}

	proxy, err := sensor.NewSlaveProxy(bus.SlaveAddress(*address), session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := proxy.BroadcastSlaveAddress(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: assigning address: %v\n", err)
		os.Exit(3)
	}

	fmt.Printf("Sensor address set to %d.\n", *address)
	fmt.Println("Power-cycle the sensor for the new address to take effect.")
}
