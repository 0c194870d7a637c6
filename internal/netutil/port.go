package netutil

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// SelectBindAddr returns preferred when it can be listened on, otherwise the
// first free candidate when autoFallback is set.
func SelectBindAddr(preferred string, candidates []string, autoFallback bool) (string, error) {
	if preferred != "" {
		free, err := IsAddrAvailable(preferred)
		if err != nil {
			return "", err
		}
		if free {
			return preferred, nil
		}
		if !autoFallback {
			return "", fmt.Errorf("preferred bind address in use: %s", preferred)
		}
	}

	for _, addr := range candidates {
		if addr == preferred {
			continue
		}
		free, err := IsAddrAvailable(addr)
		if err != nil {
			return "", err
		}
		if free {
			return addr, nil
		}
	}

	return "", errors.New("no available chart server bind addresses")
}

// IsAddrAvailable reports whether addr can be listened on right now.
func IsAddrAvailable(addr string) (bool, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false, nil
	}
	if closeErr := ln.Close(); closeErr != nil {
		return false, closeErr
	}
	return true, nil
}

// CandidateAddrs expands a comma separated list of ports or host:port pairs.
// Bare ports bind on host.
func CandidateAddrs(host, list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, ":") {
			part = net.JoinHostPort(host, part)
		}
		out = append(out, part)
	}
	return out
}
