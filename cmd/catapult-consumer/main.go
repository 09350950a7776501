// Command catapult-consumer runs the consumer side of the pipeline
// standalone, for attaching to a plugin started with a known --sock-path
// independently of catapult-driver (spec.md §4.6). Its flag layout mirrors
// galago/cmd/galago/main.go's cobra rootCmd wiring.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/novafacing/catapult/internal/catlog"
	"github.com/novafacing/catapult/internal/config"
	"github.com/novafacing/catapult/internal/consumer"
	"github.com/novafacing/catapult/internal/filter"
)

var (
	socketPath   string
	configPath   string
	sinkFlag     string
	filterScript string
	debug        bool
)

func main() {
	root := &cobra.Command{
		Use:   "catapult-consumer --sock-path PATH",
		Short: "Accept and decode events from a catapult plugin's producer socket",
		RunE:  run,
	}

	root.Flags().StringVar(&socketPath, "sock-path", "", "Unix domain socket path to bind (required)")
	root.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	root.Flags().StringVar(&sinkFlag, "sink", "", "consumer sink: stdout (default), file:<path>, tui")
	root.Flags().StringVar(&filterScript, "filter-script", "", "goja filter script path")
	root.Flags().BoolVar(&debug, "debug", false, "verbose logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}
	catlog.Init(debug || cfg.Debug)

	if socketPath == "" {
		return fmt.Errorf("--sock-path is required")
	}

	sinkKind := sinkFlag
	if sinkKind == "" {
		sinkKind = cfg.Sink
	}
	sink, err := consumer.NewSink(sinkKind)
	if err != nil {
		return err
	}

	os.Remove(socketPath)
	c, err := consumer.New(socketPath, sink)
	if err != nil {
		return err
	}
	defer c.Close()
	defer os.Remove(socketPath)

	script := filterScript
	if script == "" {
		script = cfg.FilterScript
	}
	if script != "" {
		s, err := filter.Load(script)
		if err != nil {
			return fmt.Errorf("consumer: load filter script: %w", err)
		}
		c.SetFilter(s.Predicate())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return c.Serve(ctx)
}
