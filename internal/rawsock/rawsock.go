// Package rawsock implements the raw-frame I/O layer: binding an L2
// socket to a named interface in promiscuous mode, filtered to the
// EtherDFS EtherType, and exposing non-blocking receive/send plus the
// interface's hardware address.
package rawsock

import "github.com/etherdfs/ethersrv/internal/wire"

// MaxFrameLen bounds a single received link frame.
const MaxFrameLen = 2048

// Socket is the raw-frame transport. Open/bind/ioctl failures are fatal
// at startup; once opened, these are the only operations the event loop
// needs.
type Socket interface {
	// LocalMAC returns the interface's hardware address, used as the
	// server's source MAC on every reply.
	LocalMAC() [6]byte

	// Receive reads one frame into buf, non-blocking. It returns (0, false,
	// nil) when no frame is currently available.
	Receive(buf []byte) (n int, ok bool, err error)

	// Send writes one frame, best-effort.
	Send(frame []byte) error

	// WaitReadable blocks until the socket is readable or a signal
	// interrupts the wait (returning ErrInterrupted).
	WaitReadable() error

	Close() error
}

// ErrInterrupted is returned by WaitReadable when the wait was interrupted
// by a signal (EINTR); the caller re-checks its shutdown flag and retries.
var ErrInterrupted = wireErrInterrupted{}

type wireErrInterrupted struct{}

func (wireErrInterrupted) Error() string { return "rawsock: interrupted" }

// etherDFSType aliases the EtherDFS EtherType for the socket-layer code;
// the Linux implementation converts it to network byte order where the
// kernel expects it.
const etherDFSType = wire.EtherType
