package main

import (
	"net"
	"strings"
)

// curlHostForListenAddr converts a server listen address into a host:port
// usable in a curl example: wildcard or empty hosts become localhost, and an
// empty address falls back to localhost:8080.
func curlHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
