// cmd/haa runs the accessory runtime as a host process: it is the
// host-side stand-in for the board's normal_mode_init path (spec.md §3),
// wiring config.Load, persist.FileStore, and the haa/runtime Engine
// together, then blocking until SIGINT/SIGTERM. On real firmware this
// same Boot/Run pair is invoked from the board's own entrypoint with
// real GPIO/PWM/IR drivers passed to SetHardware instead of none.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"haa/persist"
	"haa/runtime"
	"haa/services/freemonitor"
	"haa/services/setupmode"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "haa:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := envOr("HAA_CONFIG", "haa-config.json")
	storePath := envOr("HAA_STORE", "haa-store.log")

	cfgRaw, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read config %s: %w", configPath, err)
	}

	store, err := persist.Open(storePath)
	if err != nil {
		return fmt.Errorf("open store %s: %w", storePath, err)
	}
	defer store.Close()

	if setupmode.IsSetup(store) {
		fmt.Println("haa: persisted flag requests setup mode; this binary only runs normal mode")
		fmt.Println("haa: clear", persist.KeySetupMode, "in the store (or erase it) to resume normal boot")
		return nil
	}

	engine, err := runtime.Boot(cfgRaw, store)
	if err != nil {
		fmt.Fprintln(os.Stderr, "haa: boot failed, device would enter setup mode on next reset:", err)
		return err
	}

	// Host runs have no real GPIO/PWM/IR hardware: every hardware action
	// kind stays a no-op (SetHardware's nil-field contract) while the
	// rest of the runtime — persistence, bus notifications, thermostat
	// and lightbulb state machines, timetable — still runs for real.
	engine.SetHardware(nil, nil, nil, nil)

	// Likewise no pulse/ADC/I2C/UART hardware for free-monitor sources;
	// a zero-value Hooks leaves each of those kinds sampling nothing
	// while network-sourced free-monitors still run for real.
	engine.SetFreeMonitorHooks(freemonitor.Hooks{})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Println("haa: booted", engine.Reg.Len(), "services across", len(engine.Reg.Accessories), "accessories")
	engine.Run(ctx)
	fmt.Println("haa: shutting down")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
