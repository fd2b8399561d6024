package httpx

import (
	"errors"
	"net"
	"strconv"
	"syscall"
)

// how many ports after the busy one are tried
const portRollRange = 42

type Listener struct {
	net.Listener
}

// NewListener opens a TCP listener on address. With roll set, a busy
// port is swapped for the next free one in range.
func NewListener(address string, roll bool) (*Listener, error) {
	ls, err := net.Listen("tcp", address)
	if err == nil {
		return &Listener{ls}, nil
	}
	if !roll || !inUse(err) {
		return nil, err
	}

	host, p, _ := net.SplitHostPort(address)
	port, perr := strconv.Atoi(p)
	if perr != nil || port == 0 {
		return nil, err
	}
	for next := port + 1; next <= port+portRollRange; next++ {
		if ls, rerr := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(next))); rerr == nil {
			return &Listener{ls}, nil
		}
	}
	return nil, err
}

func (l Listener) GetPort() int {
	if l.Listener == nil {
		return 0
	}
	if tcp, ok := l.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// inUse covers unix EADDRINUSE and the winsock one.
func inUse(err error) bool {
	const wsaeAddrInUse = syscall.Errno(10048)
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	return errno == syscall.EADDRINUSE || errno == wsaeAddrInUse
}
