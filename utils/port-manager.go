package utils

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

func IsPortAvailable(host string, port int) bool {
	Verbose("Checking if port %d is available on %s", port, host)
	listener, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: net.ParseIP(host), Port: port})
	if err != nil {
		Verbose("error: %v", err)
		return false
	}

	defer listener.Close()
	return true
}

// NormalizeListenAddr turns "12100", ":12100" or "host:12100" into host:port form.
// A bare port or a missing host binds to localhost.
func NormalizeListenAddr(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("listen address is empty")
	}

	if !strings.Contains(addr, ":") {
		if _, err := strconv.Atoi(addr); err != nil {
			return "", fmt.Errorf("invalid port: %v", err)
		}
		addr = ":" + addr
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid listen address %q: %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return "", fmt.Errorf("invalid port %q", portStr)
	}

	if host == "" {
		host = "localhost"
	}

	return net.JoinHostPort(host, portStr), nil
}

// EnsureListenAddrFree fails early when the server port is already taken.
func EnsureListenAddrFree(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}

	port, _ := strconv.Atoi(portStr)
	if host == "localhost" {
		host = "127.0.0.1"
	}

	if !IsPortAvailable(host, port) {
		return fmt.Errorf("address %s is already in use", addr)
	}
	return nil
}
