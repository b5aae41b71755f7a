package flowtable

import "flowscope/internal/model"

// Resolve derives the canonical flow identity from a packet's endpoints.
// The lexicographically smaller (address, port) pair becomes the A side, so
// both directions of a conversation resolve to the identical key. Resolution
// is protocol-aware: identical endpoints under different transport protocols
// map to different keys.
func Resolve(ft model.FiveTuple) model.FlowKey {
	src, dst := ft.SrcIP.String(), ft.DstIP.String()
	if src > dst || (src == dst && ft.SrcPort > ft.DstPort) {
		return model.FlowKey{
			AddrA:    dst,
			AddrB:    src,
			PortA:    ft.DstPort,
			PortB:    ft.SrcPort,
			Protocol: ft.Protocol,
		}
	}
	return model.FlowKey{
		AddrA:    src,
		AddrB:    dst,
		PortA:    ft.SrcPort,
		PortB:    ft.DstPort,
		Protocol: ft.Protocol,
	}
}
