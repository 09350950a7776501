// Package consumer is the out-of-process side of the transport (spec.md
// §4.6): binds a local domain socket, accepts connections, decodes framed
// events, and dispatches them to a pluggable Sink. Tolerant of being
// started before the producer (the listener just waits for an Accept).
package consumer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/novafacing/catapult/internal/catlog"
	"github.com/novafacing/catapult/internal/wire"
)

// Sink is the pluggable output destination for decoded events. Concrete
// sinks (stdout, file, TUI) live in sibling files.
type Sink interface {
	Handle(e wire.Event) error
	Close() error
}

// Consumer binds socketPath and serves accepted connections until ctx is
// cancelled or Serve's loop exits.
type Consumer struct {
	ln     net.Listener
	sink   Sink
	filter func(wire.Event) bool
}

// New binds a Unix-domain listener at socketPath. Per spec.md §4.6/§7, an
// existing socket path is fatal at bind time; callers are responsible for
// cleanup (e.g. catapult-consumer removes a stale path before binding; the
// driver binds a freshly generated path).
func New(socketPath string, sink Sink) (*Consumer, error) {
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("consumer: listen on %s: %w", socketPath, err)
	}
	return &Consumer{ln: ln, sink: sink}, nil
}

// SetFilter installs a predicate run on every decoded event before it
// reaches the sink; events for which filter returns false are dropped.
// A nil filter (the default) accepts everything.
func (c *Consumer) SetFilter(filter func(wire.Event) bool) {
	c.filter = filter
}

// Addr returns the bound listener address.
func (c *Consumer) Addr() net.Addr { return c.ln.Addr() }

// Close closes the listener, unblocking any pending Accept.
func (c *Consumer) Close() error { return c.ln.Close() }

// Serve accepts connections until ctx is cancelled or the listener closes,
// handling each one via handleConn. It returns nil on a clean shutdown
// (ctx cancellation or listener close) and a non-nil error otherwise.
func (c *Consumer) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		c.ln.Close()
	}()

	for {
		conn, err := c.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("consumer: accept: %w", err)
		}

		go c.handleConn(ctx, conn)
	}
}

// handleConn decodes frames from conn until EOF, a FINISHED frame, decode
// error, or ctx cancellation, dispatching each to the sink. Decode errors
// close just this connection and let the accept loop continue (spec.md
// §7: "close the current connection, continue accepting").
func (c *Consumer) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	logPeerCred(conn)

	r := bufio.NewReaderSize(conn, 64*1024)
	var pending []byte
	buf := make([]byte, 4096)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		for {
			e, n, err := decodeFrame(pending)
			if errors.Is(err, wire.ErrIncomplete) {
				break
			}
			if err != nil {
				catlog.L.Warn("consumer: decode error, closing connection", zap.Error(err))
				return
			}
			pending = pending[n:]

			if c.filter == nil || c.filter(e) {
				if err := c.sink.Handle(e); err != nil {
					catlog.L.Warn("consumer: sink error", zap.Error(err))
				}
			}

			if e.IsFinished() {
				return
			}
		}

		n, err := r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				catlog.L.Warn("consumer: read error", zap.Error(err))
			}
			// Drain whatever remains buffered before giving up: spec.md
			// §4.6 treats a clean EOF as a normal shutdown path, not an
			// error, as long as every previously-written frame decodes.
			for len(pending) > 0 {
				e, n, derr := decodeFrame(pending)
				if derr != nil {
					return
				}
				pending = pending[n:]
				if c.filter == nil || c.filter(e) {
					_ = c.sink.Handle(e)
				}
			}
			return
		}
	}
}

// decodeFrame uses the TLV decoder when the leading byte carries the TLV
// magic and the fixed-layout decoder otherwise. This lets a consumer accept
// either framing without configuration (SPEC_FULL §4.2).
func decodeFrame(buf []byte) (wire.Event, int, error) {
	if len(buf) > 0 && buf[0] == wire.MagicTLV {
		return wire.DecodeTLV(buf)
	}
	return wire.Decode(buf)
}

func logPeerCred(conn net.Conn) {
	uc, ok := conn.(*net.UnixConn)
	if !ok || catlog.L == nil {
		return
	}
	cred, err := peerCred(uc)
	if err != nil {
		return
	}
	catlog.L.Info("consumer: accepted connection", zap.Int("pid", cred.pid), zap.Int("uid", cred.uid))
}

// ErrTimeout is returned by ServeUntil when its deadline elapses while the
// parent ctx is still live. A FINISHED frame or EOF ends only the connection
// it arrives on, not Serve, so ServeUntil runs until the deadline unless ctx
// is cancelled or the listener is closed first.
var ErrTimeout = errors.New("consumer: timed out waiting for producer")

// ServeUntil runs Serve with a deadline, implementing spec.md §4.6's "(c)
// the external orchestrator times out" teardown path.
func ServeUntil(ctx context.Context, c *Consumer, timeout time.Duration) error {
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := c.Serve(dctx)
	if err == nil && dctx.Err() != nil && ctx.Err() == nil {
		return ErrTimeout
	}
	return err
}
