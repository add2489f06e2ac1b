// BrewLogic Core - brewing controller runtime
//
// This is the main entry point of the controller. It loads configuration,
// opens the object store, restores objects, and then serves the command
// protocol on every configured connection from a single loop.
//
// REBOOT and FACTORY_RESET commands end the loop; the process then replaces
// itself with a fresh copy of the same binary.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=0.2.0 -X main.commit=abc123"
var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// errResetRequested is returned by run when a client asked for a restart.
var errResetRequested = errors.New("reset requested")

func main() {
	flags := pflag.NewFlagSet("brewlogic", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "path to config.yaml (default $BREWLOGIC_CONFIG or "+defaultConfigPath+")")
	showVersion := flags.BoolP("version", "v", false, "print version and exit")
	_ = flags.Parse(os.Args[1:]) //nolint:errcheck // ExitOnError

	if *showVersion {
		fmt.Printf("brewlogic %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, getConfigPath(*configPath))
	cancel()

	if errors.Is(err, errResetRequested) {
		if execErr := restart(); execErr != nil {
			fmt.Fprintf(os.Stderr, "Error: restarting: %v\n", execErr)
			os.Exit(1)
		}
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// getConfigPath returns the configuration file path: the flag value, then
// BREWLOGIC_CONFIG, then the default.
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if path := os.Getenv("BREWLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// restart replaces the process image with the same executable and arguments.
func restart() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}
	return syscall.Exec(exe, os.Args, os.Environ())
}
