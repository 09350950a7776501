// Package driver ties the whole pipeline together (spec.md §4.7): allocates
// a fresh socket path, binds the consumer listener, spawns the emulator
// with a constructed plugin-argument string, optionally pipes program
// input, and joins the consumer and the emulator subprocess.
//
// Grounded on the original Rust examples/mons_meg/src/bin/mons_meg/main.rs
// (random socket suffix, bind-before-spawn, argument-string construction,
// concurrent join of consumer+emulator), translated into Go's
// golang.org/x/sync/errgroup idiom in place of tokio::join!.
package driver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/novafacing/catapult/internal/consumer"
)

// Options configure one driver run.
type Options struct {
	EmulatorPath string   // path to the QEMU-like emulator binary
	PluginPath   string   // path to the built catapult plugin .so
	ProgramArgs  []string // argv for the guest program under the emulator

	SocketDir string // well-known directory under which the socket is created
	BatchSize int

	TraceBranches bool
	TraceSyscalls bool
	TracePC       bool
	TraceReads    bool
	TraceWrites   bool
	TraceInstrs   bool

	FilterScript string
	Wire         string // "fixed" or "tlv"

	StdinFile string // optional file piped to the guest's stdin
	Sink      consumer.Sink
}

// Run allocates the socket, binds the consumer, spawns the emulator, joins
// both, and returns the emulator's exit code (spec.md §6: "Driver returns
// the emulator's exit code").
func Run(ctx context.Context, opts Options) (int, error) {
	socketPath, err := freshSocketPath(opts.SocketDir)
	if err != nil {
		return 1, err
	}
	defer os.Remove(socketPath)

	c, err := consumer.New(socketPath, opts.Sink)
	if err != nil {
		return 1, fmt.Errorf("driver: bind consumer: %w", err)
	}
	defer c.Close()

	cmd, err := buildEmulatorCmd(ctx, opts, socketPath)
	if err != nil {
		return 1, err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Serve(gctx)
	})

	exitCode := 0
	g.Go(func() error {
		// Closing the listener once the emulator exits lets Serve return,
		// so Wait does not block on the accept loop.
		defer c.Close()
		err := cmd.Run()
		if err == nil {
			return nil
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			return nil
		}
		return fmt.Errorf("driver: run emulator: %w", err)
	})

	if err := g.Wait(); err != nil {
		return 1, err
	}

	c.Close()
	return exitCode, nil
}

// freshSocketPath allocates a collision-unlikely path under dir, following
// mons_meg's random-suffix scheme but using a UUID for a stronger collision
// bound (SPEC_FULL §3).
func freshSocketPath(dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("driver: prepare socket dir %s: %w", dir, err)
	}
	name := "catapult-" + uuid.NewString()[:8] + ".sock"
	return filepath.Join(dir, name), nil
}

// PluginArgString builds the `<path>,key=val,...` value passed after the
// emulator's `-plugin` flag (buildEmulatorCmd adds the flag itself), matching
// the format in spec.md §4.7.
func PluginArgString(opts Options, socketPath string) string {
	onoff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}

	parts := []string{
		opts.PluginPath,
		"trace_branches=" + onoff(opts.TraceBranches),
		"trace_syscalls=" + onoff(opts.TraceSyscalls),
		"trace_pc=" + onoff(opts.TracePC),
		"trace_reads=" + onoff(opts.TraceReads),
		"trace_writes=" + onoff(opts.TraceWrites),
		"trace_instrs=" + onoff(opts.TraceInstrs),
		"sock_path=" + socketPath,
	}
	if opts.FilterScript != "" {
		parts = append(parts, "filter_script="+opts.FilterScript)
	}
	if opts.Wire != "" {
		parts = append(parts, "wire="+opts.Wire)
	}
	if opts.BatchSize > 0 {
		parts = append(parts, fmt.Sprintf("batch_size=%d", opts.BatchSize))
	}
	return strings.Join(parts, ",")
}

func buildEmulatorCmd(ctx context.Context, opts Options, socketPath string) (*exec.Cmd, error) {
	args := []string{"-plugin", PluginArgString(opts, socketPath)}
	args = append(args, opts.ProgramArgs...)

	cmd := exec.CommandContext(ctx, opts.EmulatorPath, args...)
	cmd.Stderr = os.Stderr
	cmd.Stdout = os.Stdout

	if opts.StdinFile != "" {
		f, err := os.Open(opts.StdinFile)
		if err != nil {
			return nil, fmt.Errorf("driver: open stdin file %s: %w", opts.StdinFile, err)
		}
		cmd.Stdin = f
	}

	return cmd, nil
}
