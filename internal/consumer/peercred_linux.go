//go:build linux

package consumer

import (
	"net"

	"golang.org/x/sys/unix"
)

type peerCreds struct {
	pid int
	uid int
}

// peerCred fetches SO_PEERCRED on a connected Unix domain socket, used to
// log who connected (SPEC_FULL §3: "logged once per accepted connection").
func peerCred(conn *net.UnixConn) (peerCreds, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return peerCreds{}, err
	}

	var ucred *unix.Ucred
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		ucred, sockErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if err != nil {
		return peerCreds{}, err
	}
	if sockErr != nil {
		return peerCreds{}, sockErr
	}

	return peerCreds{pid: int(ucred.Pid), uid: int(ucred.Uid)}, nil
}
