package pcap

import (
	"os"

	"flowscope/internal/engine/protocol"
	"flowscope/internal/model"

	"github.com/google/gopacket/pcapgo"
)

// State is the lifecycle of a Stream. A stream starts Active and ends
// Exhausted; Exhausted is reachable by natural completion, by an absorbed
// late reader failure, or by Close.
type State int

const (
	StateActive State = iota
	StateExhausted
)

func (s State) String() string {
	if s == StateExhausted {
		return "exhausted"
	}
	return "active"
}

// Stream is a lazy, single-pass, forward-only packet sequence over a
// capture file. It is not restartable: once exhausted, the source must be
// re-opened to read again. The stream exclusively owns the file handle and
// releases it on every exit path, including consumer-side early abandonment
// via Close.
type Stream struct {
	file   *os.File
	reader *pcapgo.Reader
	state  State
}

// Next produces the next decoded packet, suspending the underlying read
// between calls. Frames that fail to decode or carry no IP packet are
// skipped and iteration continues. ok is false once the stream is
// exhausted; a mid-stream reader failure (for example a prematurely closed
// file) is absorbed as exhaustion rather than surfaced, a tradeoff of
// simplicity over diagnosability kept from the design.
func (st *Stream) Next() (pkt *model.ParsedPacket, ok bool) {
	if st.state == StateExhausted {
		return nil, false
	}
	for {
		data, ci, err := st.reader.ReadPacketData()
		if err != nil {
			st.exhaust()
			return nil, false
		}
		pkt, err := protocol.ParsePacket(data, ci)
		if err != nil {
			continue
		}
		return pkt, true
	}
}

// State reports whether the stream is still producing.
func (st *Stream) State() State {
	return st.state
}

// Close moves the stream to its terminal state and releases the file. Any
// unread frames stay unread. Idempotent.
func (st *Stream) Close() {
	st.exhaust()
}

func (st *Stream) exhaust() {
	if st.state == StateExhausted {
		return
	}
	st.state = StateExhausted
	st.file.Close()
}
