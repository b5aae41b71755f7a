package model

import (
	"fmt"
	"net"
	"time"
)

// FiveTuple represents the 5-tuple of a network packet.
type FiveTuple struct {
	SrcIP    net.IP
	DstIP    net.IP
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
}

func (ft FiveTuple) String() string {
	return fmt.Sprintf("%s:%d->%s:%d/%d", ft.SrcIP, ft.SrcPort, ft.DstIP, ft.DstPort, ft.Protocol)
}

// ParsedPacket holds the decoded network-layer view of a single captured
// frame. Instances are immutable once constructed; consumers receive them
// by read-only reference and must not mutate them.
type ParsedPacket struct {
	Timestamp time.Time
	FiveTuple FiveTuple
	// Length is the original wire length of the frame, not the captured length.
	Length int
	// Payload is the application payload carried above the transport layer,
	// empty when the packet carries none.
	Payload []byte
}

// FlowKey is the canonical, direction-independent identity of a flow.
// AddrA/PortA always hold the lexicographically smaller endpoint, so a
// packet X->Y and its reply Y->X resolve to the identical key. Packets
// without transport ports (non-TCP/UDP) carry zero in both port fields.
// FlowKey is a comparable value type and is used directly as a map key.
type FlowKey struct {
	AddrA    string
	AddrB    string
	PortA    uint16
	PortB    uint16
	Protocol uint8
}

func (k FlowKey) String() string {
	return fmt.Sprintf("%s:%d<->%s:%d/%d", k.AddrA, k.PortA, k.AddrB, k.PortB, k.Protocol)
}

// FlowRecord aggregates all packets mapped to one FlowKey, in the order
// they were inserted.
type FlowRecord struct {
	Key         FlowKey
	Packets     []*ParsedPacket
	PacketCount uint64
	ByteCount   uint64
	FirstSeen   time.Time
	LastSeen    time.Time
}
