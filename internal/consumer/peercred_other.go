//go:build !linux

package consumer

import (
	"errors"
	"net"
)

type peerCreds struct {
	pid int
	uid int
}

// peerCred is SO_PEERCRED's platform-specific; it is unavailable outside
// Linux, so logPeerCred silently skips the annotation there.
func peerCred(conn *net.UnixConn) (peerCreds, error) {
	return peerCreds{}, errors.New("consumer: peer credentials unsupported on this platform")
}
