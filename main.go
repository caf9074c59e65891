package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	seedcmd "fleet-tracker/cmd/seed"
	trackingservice "fleet-tracker/cmd/tracking_service"
	"fleet-tracker/internal/cli"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	// quick path for global help
	if len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		cli.PrintUsage(os.Stdout)
		os.Exit(0)
	}

	// parse mode and collect the remaining args for that mode
	mode, svcArgs, err := cli.ParseMode(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cli.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	// context cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// run the service specified by the mode flag
	switch mode {

	case cli.ModeTracking:
		fs := flag.NewFlagSet(cli.ModeTracking, flag.ContinueOnError)
		maxConc := fs.Int("max-concurrent", 100, "Maximum number of concurrent HTTP requests to process (WebSocket connections excluded)")
		tick := fs.Duration("tick", 0, "Simulation tick period; overrides simulation.tick when > 0")
		cfgPath := fs.String("config", defaultConfigPath, "Path to the YAML config file")
		cli.AttachUsage(fs, cli.ModeTracking)

		parseOrExit(fs, svcArgs)
		if *maxConc < 1 {
			fmt.Fprintln(os.Stderr, "Error: --max-concurrent must be >= 1")
			fs.Usage()
			os.Exit(2)
		}
		if *tick < 0 {
			fmt.Fprintln(os.Stderr, "Error: --tick must not be negative")
			fs.Usage()
			os.Exit(2)
		}
		if err := trackingservice.Run(ctx, *cfgPath, *maxConc, *tick); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	case cli.ModeSeed:
		fs := flag.NewFlagSet(cli.ModeSeed, flag.ContinueOnError)
		cfgPath := fs.String("config", defaultConfigPath, "Path to the YAML config file")
		cli.AttachUsage(fs, cli.ModeSeed)

		parseOrExit(fs, svcArgs)
		if err := seedcmd.Run(ctx, *cfgPath); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	default:
		// should not happen because ParseMode validates known modes
		fmt.Fprintln(os.Stderr, "Error: unknown mode")
		os.Exit(2)
	}

	// tiny delay to let deferred logs flush on very fast exits
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Millisecond):
	}
}

func parseOrExit(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
