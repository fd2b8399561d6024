package httpx

import (
	"net"
	"strconv"
)

// buildAddress takes the host of address and the port the listener
// actually got, so ":0" or a rolled port shows up as the real one.
// Default web ports are left out.
func buildAddress(address string, l Listener) string {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
	}
	if host == "" {
		host = "localhost"
	}
	switch port := l.GetPort(); port {
	case 0, 80, 443:
		return host
	default:
		return net.JoinHostPort(host, strconv.Itoa(port))
	}
}
