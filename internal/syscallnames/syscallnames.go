// Package syscallnames maps a raw syscall number, as carried on a
// wire.Event Syscall frame, to its x86_64 Linux name, for the human-facing
// sinks (SPEC_FULL §3). Built from golang.org/x/sys/unix's SYS_* constants
// rather than a hand-maintained table.
package syscallnames

import "golang.org/x/sys/unix"

var table = map[int64]string{
	unix.SYS_READ:             "read",
	unix.SYS_WRITE:            "write",
	unix.SYS_OPEN:              "open",
	unix.SYS_CLOSE:            "close",
	unix.SYS_STAT:             "stat",
	unix.SYS_FSTAT:            "fstat",
	unix.SYS_LSTAT:            "lstat",
	unix.SYS_MMAP:             "mmap",
	unix.SYS_MPROTECT:         "mprotect",
	unix.SYS_MUNMAP:           "munmap",
	unix.SYS_BRK:              "brk",
	unix.SYS_RT_SIGACTION:     "rt_sigaction",
	unix.SYS_IOCTL:            "ioctl",
	unix.SYS_PREAD64:          "pread64",
	unix.SYS_PWRITE64:         "pwrite64",
	unix.SYS_ACCESS:           "access",
	unix.SYS_PIPE:             "pipe",
	unix.SYS_DUP:              "dup",
	unix.SYS_DUP2:             "dup2",
	unix.SYS_NANOSLEEP:        "nanosleep",
	unix.SYS_GETPID:           "getpid",
	unix.SYS_SOCKET:           "socket",
	unix.SYS_CONNECT:          "connect",
	unix.SYS_ACCEPT:           "accept",
	unix.SYS_SENDTO:           "sendto",
	unix.SYS_RECVFROM:         "recvfrom",
	unix.SYS_BIND:             "bind",
	unix.SYS_LISTEN:           "listen",
	unix.SYS_CLONE:            "clone",
	unix.SYS_FORK:             "fork",
	unix.SYS_EXECVE:           "execve",
	unix.SYS_EXIT:             "exit",
	unix.SYS_EXIT_GROUP:       "exit_group",
	unix.SYS_WAIT4:            "wait4",
	unix.SYS_KILL:             "kill",
	unix.SYS_UNAME:            "uname",
	unix.SYS_FCNTL:            "fcntl",
	unix.SYS_FLOCK:            "flock",
	unix.SYS_FSYNC:            "fsync",
	unix.SYS_GETDENTS:         "getdents",
	unix.SYS_GETCWD:           "getcwd",
	unix.SYS_CHDIR:            "chdir",
	unix.SYS_RENAME:           "rename",
	unix.SYS_MKDIR:            "mkdir",
	unix.SYS_RMDIR:            "rmdir",
	unix.SYS_UNLINK:           "unlink",
	unix.SYS_READLINK:         "readlink",
	unix.SYS_CHMOD:            "chmod",
	unix.SYS_CHOWN:            "chown",
	unix.SYS_GETUID:           "getuid",
	unix.SYS_GETGID:           "getgid",
	unix.SYS_SETUID:           "setuid",
	unix.SYS_SETGID:           "setgid",
	unix.SYS_GETTID:           "gettid",
	unix.SYS_FUTEX:            "futex",
	unix.SYS_OPENAT:           "openat",
	unix.SYS_PRLIMIT64:        "prlimit64",
}

// Name returns the syscall name for num, or "" if unknown.
func Name(num int64) string {
	return table[num]
}

// NameOr returns Name(num), or def if num is not in the table.
func NameOr(num int64, def string) string {
	if n, ok := table[num]; ok {
		return n
	}
	return def
}
