// Command catapult-driver ties the pipeline together end to end: binds a
// consumer, spawns the emulator with the plugin loaded, and exits with the
// emulator's exit code (spec.md §4.7). Its cobra CLI structure follows
// galago's cmd/galago/main.go rootCmd/flags pattern; consumer-tool argument
// parsing is explicitly out of core scope per spec.md §1, but a runnable
// entry point is still part of a complete repository.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/novafacing/catapult/internal/catlog"
	"github.com/novafacing/catapult/internal/config"
	"github.com/novafacing/catapult/internal/consumer"
	"github.com/novafacing/catapult/internal/driver"
)

var (
	emulatorPath string
	pluginPath   string
	configPath   string

	traceBranches bool
	traceSyscalls bool
	tracePC       bool
	traceReads    bool
	traceWrites   bool
	traceInstrs   bool

	sinkFlag   string
	wireFlag   string
	filterFlag string
	stdinFile  string
	batchSize  int
	debug      bool
)

func main() {
	root := &cobra.Command{
		Use:   "catapult-driver [flags] -- program-args...",
		Short: "Spawn an emulator under the catapult instrumentation plugin",
		Args:  cobra.ArbitraryArgs,
		RunE:  run,
	}

	root.Flags().StringVar(&emulatorPath, "emulator", "qemu-user", "emulator binary to spawn")
	root.Flags().StringVar(&pluginPath, "plugin", "", "path to the built catapult plugin .so")
	root.Flags().StringVar(&configPath, "config", "", "optional YAML config file")

	root.Flags().BoolVar(&traceBranches, "trace-branches", false, "emit PC events only at TB boundaries")
	root.Flags().BoolVar(&traceSyscalls, "trace-syscalls", true, "emit Syscall events")
	root.Flags().BoolVar(&tracePC, "trace-pc", true, "emit ProgramCounter events")
	root.Flags().BoolVar(&traceReads, "trace-reads", false, "emit MemoryAccess events for reads")
	root.Flags().BoolVar(&traceWrites, "trace-writes", false, "emit MemoryAccess events for writes")
	root.Flags().BoolVar(&traceInstrs, "trace-instrs", false, "emit Instruction events")

	root.Flags().StringVar(&sinkFlag, "sink", "", "consumer sink: stdout (default), file:<path>, tui")
	root.Flags().StringVar(&wireFlag, "wire", "", "wire framing: fixed (default) or tlv")
	root.Flags().StringVar(&filterFlag, "filter-script", "", "goja filter script path")
	root.Flags().StringVar(&stdinFile, "stdin", "", "file piped to the guest program's stdin")
	root.Flags().IntVar(&batchSize, "batch-size", 0, "producer flush batch size")
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

	if pluginPath == "" {
		return fmt.Errorf("--plugin is required")
	}

	sinkKind := sinkFlag
	if sinkKind == "" {
		sinkKind = cfg.Sink
	}
	sink, err := consumer.NewSink(sinkKind)
	if err != nil {
		return err
	}

	wireKind := wireFlag
	if wireKind == "" {
		wireKind = cfg.Wire
	}

	bs := batchSize
	if bs == 0 {
		bs = cfg.BatchSize
	}

	opts := driver.Options{
		EmulatorPath:  emulatorPath,
		PluginPath:    pluginPath,
		ProgramArgs:   args,
		SocketDir:     cfg.SocketDir,
		BatchSize:     bs,
		TraceBranches: traceBranches,
		TraceSyscalls: traceSyscalls,
		TracePC:       tracePC,
		TraceReads:    traceReads,
		TraceWrites:   traceWrites,
		TraceInstrs:   traceInstrs,
		FilterScript:  filterFlag,
		Wire:          wireKind,
		StdinFile:     stdinFile,
		Sink:          sink,
	}

	code, err := driver.Run(context.Background(), opts)
	if err != nil {
		return err
	}
	os.Exit(code)
	return nil
}
