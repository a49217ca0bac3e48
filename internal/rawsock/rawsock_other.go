//go:build !linux

package rawsock

import "fmt"

// Open is unsupported outside Linux: AF_PACKET raw sockets and the
// promiscuous-mode ioctls are Linux-specific.
func Open(ifName string) (Socket, error) {
	return nil, fmt.Errorf("rawsock: raw Ethernet sockets are only supported on linux")
}
