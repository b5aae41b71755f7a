package protocol

import (
	"errors"
	"fmt"
	"time"

	"flowscope/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Decode outcomes that cause a frame to be skipped rather than surfaced.
// Callers match them with errors.Is and keep reading.
var (
	// ErrNotIP marks a structurally valid frame that does not carry an IP
	// packet (ARP, LLDP, ...). Not a failure, just not applicable.
	ErrNotIP = errors.New("not an IP packet")

	// ErrMalformedFrame marks a frame that could not be decoded at all,
	// typically because it was truncated by the capture.
	ErrMalformedFrame = errors.New("malformed frame")
)

// ParsePacket uses gopacket to decode a raw link-layer frame and extract the
// network-layer packet it carries. It is a pure transform: no frame ever
// aborts the overall read, the caller drops the frame and continues.
func ParsePacket(data []byte, ci gopacket.CaptureInfo) (*model.ParsedPacket, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)

	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, errLayer.Error())
	}

	info := &model.ParsedPacket{
		Timestamp: ci.Timestamp,
		Length:    ci.Length,
	}
	if info.Timestamp.IsZero() {
		info.Timestamp = time.Now()
	}
	if info.Length == 0 {
		info.Length = len(data)
	}

	var fiveTuple model.FiveTuple

	if l := packet.Layer(layers.LayerTypeIPv4); l != nil {
		ip := l.(*layers.IPv4)
		fiveTuple.SrcIP = ip.SrcIP
		fiveTuple.DstIP = ip.DstIP
		fiveTuple.Protocol = uint8(ip.Protocol)
	} else if l := packet.Layer(layers.LayerTypeIPv6); l != nil {
		ip := l.(*layers.IPv6)
		fiveTuple.SrcIP = ip.SrcIP
		fiveTuple.DstIP = ip.DstIP
		fiveTuple.Protocol = uint8(ip.NextHeader)
	} else {
		return nil, ErrNotIP
	}

	// TCP and UDP contribute ports; every other transport keys on addresses
	// and protocol alone, with both ports left at zero.
	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		fiveTuple.SrcPort = uint16(tcp.SrcPort)
		fiveTuple.DstPort = uint16(tcp.DstPort)
	} else if l := packet.Layer(layers.LayerTypeUDP); l != nil {
		udp := l.(*layers.UDP)
		fiveTuple.SrcPort = uint16(udp.SrcPort)
		fiveTuple.DstPort = uint16(udp.DstPort)
	}

	if app := packet.ApplicationLayer(); app != nil {
		info.Payload = app.Payload()
	}

	info.FiveTuple = fiveTuple

	return info, nil
}
