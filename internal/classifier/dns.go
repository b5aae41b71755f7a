// Package classifier contains application-layer probes that consume parsed
// packets read-only. They sit outside the ingestion core: nothing here
// mutates a packet or feeds back into flow reconstruction.
package classifier

import (
	"flowscope/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const dnsPort = 53

// IsDNS reports whether the packet carries a parseable DNS message on the
// well-known port.
func IsDNS(pkt *model.ParsedPacket) bool {
	ft := pkt.FiveTuple
	if ft.Protocol != uint8(layers.IPProtocolUDP) {
		return false
	}
	if ft.SrcPort != dnsPort && ft.DstPort != dnsPort {
		return false
	}
	var dns layers.DNS
	return dns.DecodeFromBytes(pkt.Payload, gopacket.NilDecodeFeedback) == nil
}

// Queries returns the question names of a DNS message, or nil when the
// payload is not DNS.
func Queries(pkt *model.ParsedPacket) []string {
	if pkt.FiveTuple.Protocol != uint8(layers.IPProtocolUDP) {
		return nil
	}
	var dns layers.DNS
	if err := dns.DecodeFromBytes(pkt.Payload, gopacket.NilDecodeFeedback); err != nil {
		return nil
	}
	names := make([]string, 0, len(dns.Questions))
	for _, q := range dns.Questions {
		names = append(names, string(q.Name))
	}
	return names
}
