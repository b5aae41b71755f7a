package classifier

import (
	"bytes"

	"flowscope/internal/model"

	"github.com/google/gopacket/layers"
)

var httpPrefixes = [][]byte{
	[]byte("GET "),
	[]byte("POST "),
	[]byte("PUT "),
	[]byte("DELETE "),
	[]byte("HEAD "),
	[]byte("OPTIONS "),
	[]byte("HTTP/1."),
}

// IsHTTP reports whether the packet's TCP payload starts like an HTTP/1.x
// request or response.
func IsHTTP(pkt *model.ParsedPacket) bool {
	if pkt.FiveTuple.Protocol != uint8(layers.IPProtocolTCP) {
		return false
	}
	for _, prefix := range httpPrefixes {
		if bytes.HasPrefix(pkt.Payload, prefix) {
			return true
		}
	}
	return false
}

// UserAgent extracts the User-Agent header from an HTTP request payload, or
// "" when the packet is not HTTP or carries no such header.
func UserAgent(pkt *model.ParsedPacket) string {
	if !IsHTTP(pkt) {
		return ""
	}
	for _, line := range bytes.Split(pkt.Payload, []byte("\r\n")) {
		name, value, found := bytes.Cut(line, []byte(":"))
		if !found {
			continue
		}
		if bytes.EqualFold(name, []byte("User-Agent")) {
			return string(bytes.TrimSpace(value))
		}
	}
	return ""
}
