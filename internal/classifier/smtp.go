package classifier

import (
	"bytes"

	"flowscope/internal/model"

	"github.com/google/gopacket/layers"
)

var smtpPorts = map[uint16]bool{25: true, 465: true, 587: true}

var smtpVerbs = [][]byte{
	[]byte("HELO "),
	[]byte("EHLO "),
	[]byte("MAIL FROM:"),
	[]byte("RCPT TO:"),
	[]byte("DATA"),
	[]byte("QUIT"),
	[]byte("220 "),
	[]byte("250 "),
}

// IsSMTP reports whether the packet looks like SMTP: TCP on a mail port
// with a payload starting with an SMTP command or reply.
func IsSMTP(pkt *model.ParsedPacket) bool {
	ft := pkt.FiveTuple
	if ft.Protocol != uint8(layers.IPProtocolTCP) {
		return false
	}
	if !smtpPorts[ft.SrcPort] && !smtpPorts[ft.DstPort] {
		return false
	}
	for _, verb := range smtpVerbs {
		if bytes.HasPrefix(pkt.Payload, verb) {
			return true
		}
	}
	return false
}
