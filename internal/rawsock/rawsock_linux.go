//go:build linux

package rawsock

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// packetSocket is the Linux AF_PACKET implementation of Socket: a raw
// packet socket bound to one interface, with the kernel filtering to the
// EtherDFS EtherType through the socket protocol argument.
type packetSocket struct {
	fd      int
	ifIndex int
	mac     [6]byte
	epfd    int
}

// htons converts a host-order uint16 to network byte order, needed because
// AF_PACKET's sll_protocol and the SOCK_RAW protocol argument are both
// big-endian regardless of host endianness.
func htons(v uint16) uint16 {
	return (v << 8) | (v >> 8)
}

// Open binds a raw packet socket to ifName in promiscuous mode,
// non-blocking. Requires CAP_NET_RAW, plus CAP_NET_ADMIN for promiscuous
// mode.
func Open(ifName string) (Socket, error) {
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(uint16(etherDFSType))))
	if err != nil {
		return nil, fmt.Errorf("rawsock: socket: %w", err)
	}

	ifi, err := interfaceByName(ifName)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rawsock: lookup interface %q: %w", ifName, err)
	}

	addr := &unix.SockaddrLinklayer{
		Protocol: htons(uint16(etherDFSType)),
		Ifindex:  ifi.Index,
	}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rawsock: bind: %w", err)
	}

	mreq := unix.PacketMreq{
		Ifindex: int32(ifi.Index),
		Type:    unix.PACKET_MR_PROMISC,
	}
	if err := unix.SetsockoptPacketMreq(fd, unix.SOL_PACKET, unix.PACKET_ADD_MEMBERSHIP, &mreq); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rawsock: set promiscuous: %w", err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rawsock: set non-blocking: %w", err)
	}

	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rawsock: epoll_create1: %w", err)
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		unix.Close(fd)
		unix.Close(epfd)
		return nil, fmt.Errorf("rawsock: epoll_ctl: %w", err)
	}

	return &packetSocket{fd: fd, ifIndex: ifi.Index, mac: ifi.MAC, epfd: epfd}, nil
}

func (s *packetSocket) LocalMAC() [6]byte { return s.mac }

func (s *packetSocket) Receive(buf []byte) (int, bool, error) {
	n, _, err := unix.Recvfrom(s.fd, buf, 0)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("rawsock: recvfrom: %w", err)
	}
	return n, true, nil
}

func (s *packetSocket) Send(frame []byte) error {
	addr := &unix.SockaddrLinklayer{
		Protocol: htons(uint16(etherDFSType)),
		Ifindex:  s.ifIndex,
	}
	if err := unix.Sendto(s.fd, frame, 0, addr); err != nil {
		return fmt.Errorf("rawsock: sendto: %w", err)
	}
	return nil
}

// WaitReadable blocks in epoll_wait until the socket is readable. A signal
// delivered during the wait surfaces as EINTR, which this translates to
// ErrInterrupted so the event loop can re-check its shutdown state.
func (s *packetSocket) WaitReadable() error {
	var events [1]unix.EpollEvent
	_, err := unix.EpollWait(s.epfd, events[:], -1)
	if err != nil {
		if err == unix.EINTR {
			return ErrInterrupted
		}
		return fmt.Errorf("rawsock: epoll_wait: %w", err)
	}
	return nil
}

func (s *packetSocket) Close() error {
	unix.Close(s.epfd)
	return unix.Close(s.fd)
}

type ifaceInfo struct {
	Index int
	MAC   [6]byte
}

func interfaceByName(name string) (ifaceInfo, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return ifaceInfo{}, err
	}
	var mac [6]byte
	copy(mac[:], ifi.HardwareAddr)
	return ifaceInfo{Index: ifi.Index, MAC: mac}, nil
}
