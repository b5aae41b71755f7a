// Package pcap turns a stored capture file into a consumable packet
// sequence, either as a lazy single-pass stream or as a fully materialized,
// optionally timestamp-sorted list with an attached flow table.
package pcap

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"flowscope/internal/engine/flowtable"
	"flowscope/internal/engine/protocol"
	"flowscope/internal/model"

	"github.com/google/gopacket/pcapgo"
	"github.com/sirupsen/logrus"
)

// Mode selects how a Source exposes the capture. It is fixed at
// construction; requesting the accessor of the other mode fails with
// ErrWrongMode.
type Mode int

const (
	// ModeStreaming yields packets lazily, one per pull, without buffering
	// the capture.
	ModeStreaming Mode = iota
	// ModeMaterialized reads the whole capture eagerly into memory.
	ModeMaterialized
)

func (m Mode) String() string {
	switch m {
	case ModeStreaming:
		return "streaming"
	case ModeMaterialized:
		return "materialized"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a configuration string onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "streaming":
		return ModeStreaming, nil
	case "materialized":
		return ModeMaterialized, nil
	default:
		return 0, fmt.Errorf("unknown source mode %q", s)
	}
}

// Construction and access errors. Configuration and resource-acquisition
// failures are fatal and reported immediately at construction; per-record
// decode issues are always recovered locally and never escalate.
var (
	ErrMissingSource          = errors.New("either a capture file or a network interface is required")
	ErrAmbiguousSource        = errors.New("both capture file and network interface specified")
	ErrLiveCaptureUnsupported = errors.New("live capture from an interface is not implemented")
	ErrSourceUnavailable      = errors.New("capture source unavailable")
	ErrWrongMode              = errors.New("accessor does not match source mode")
)

// Options configures a Source. File and Interface are mutually exclusive and
// exactly one must be set; Interface is accepted structurally but always
// rejected at construction.
type Options struct {
	File      string
	Interface string
	Mode      Mode
	// BuildFlowTable populates a flow table from the materialized sequence.
	// It implies SortByTimestamp: flows are only reconstructed from a
	// chronologically ordered sequence.
	BuildFlowTable bool
	// SortByTimestamp re-orders the materialized sequence by ascending
	// capture timestamp (stable, ties keep capture order). Materialized
	// mode only.
	SortByTimestamp bool
	// Verbose logs read statistics after a materialized read.
	Verbose bool
}

// Stats reports what a materialized read encountered. Total is always the
// sum of Skipped and Used.
type Stats struct {
	Total   int
	Skipped int
	Used    int
}

// Source drives a capture reader in the mode fixed at construction.
type Source struct {
	mode Mode

	// Streaming state. The stream exclusively owns the file handle.
	stream *Stream

	// Materialized state. The file is already closed by the time NewSource
	// returns.
	packets []*model.ParsedPacket
	table   *flowtable.Table
	stats   Stats
}

// NewSource validates the options, opens the capture and, in materialized
// mode, performs the full read before returning. Configuration errors never
// leave partial state behind.
func NewSource(opts Options) (*Source, error) {
	switch {
	case opts.File == "" && opts.Interface == "":
		return nil, ErrMissingSource
	case opts.File != "" && opts.Interface != "":
		return nil, fmt.Errorf("%w: file %q, interface %q", ErrAmbiguousSource, opts.File, opts.Interface)
	case opts.Interface != "":
		return nil, fmt.Errorf("%w: %q", ErrLiveCaptureUnsupported, opts.Interface)
	}

	f, err := os.Open(opts.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	reader, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: reading pcap header of %q: %v", ErrSourceUnavailable, opts.File, err)
	}

	src := &Source{mode: opts.Mode}

	if opts.Mode == ModeStreaming {
		src.stream = &Stream{file: f, reader: reader}
		return src, nil
	}

	src.materialize(f, reader, opts)
	return src, nil
}

// materialize reads every record eagerly, closes the file, then applies the
// ordering policy and optional flow-table construction.
func (s *Source) materialize(f *os.File, reader *pcapgo.Reader, opts Options) {
	for {
		data, ci, err := reader.ReadPacketData()
		if err != nil {
			// io.EOF on a clean capture; any other reader failure ends
			// the scan the same way.
			break
		}
		s.stats.Total++

		pkt, err := protocol.ParsePacket(data, ci)
		if err != nil {
			s.stats.Skipped++
			logrus.Debugf("skipping frame %d: %v", s.stats.Total, err)
			continue
		}
		s.packets = append(s.packets, pkt)
	}
	f.Close()
	s.stats.Used = s.stats.Total - s.stats.Skipped

	if opts.SortByTimestamp || opts.BuildFlowTable {
		sort.SliceStable(s.packets, func(i, j int) bool {
			return s.packets[i].Timestamp.Before(s.packets[j].Timestamp)
		})
	}

	if opts.BuildFlowTable {
		s.table = flowtable.New()
		for _, pkt := range s.packets {
			s.table.Push(pkt)
		}
	}

	if opts.Verbose {
		logrus.Infof("total %d packets found, using %d (%d skipped)",
			s.stats.Total, s.stats.Used, s.stats.Skipped)
	}
}

// Mode returns the mode the source was constructed in.
func (s *Source) Mode() Mode {
	return s.mode
}

// Stream returns the lazy packet sequence of a streaming source.
func (s *Source) Stream() (*Stream, error) {
	if s.mode != ModeStreaming {
		return nil, fmt.Errorf("%w: Stream requires %s, source is %s", ErrWrongMode, ModeStreaming, s.mode)
	}
	return s.stream, nil
}

// Packets returns the materialized packet sequence.
func (s *Source) Packets() ([]*model.ParsedPacket, error) {
	if s.mode != ModeMaterialized {
		return nil, fmt.Errorf("%w: Packets requires %s, source is %s", ErrWrongMode, ModeMaterialized, s.mode)
	}
	return s.packets, nil
}

// ReadStats returns the read counters of a materialized source.
func (s *Source) ReadStats() (Stats, error) {
	if s.mode != ModeMaterialized {
		return Stats{}, fmt.Errorf("%w: ReadStats requires %s, source is %s", ErrWrongMode, ModeMaterialized, s.mode)
	}
	return s.stats, nil
}

// FlowTable returns the flow table built during a materialized read, or nil
// when BuildFlowTable was not requested.
func (s *Source) FlowTable() (*flowtable.Table, error) {
	if s.mode != ModeMaterialized {
		return nil, fmt.Errorf("%w: FlowTable requires %s, source is %s", ErrWrongMode, ModeMaterialized, s.mode)
	}
	return s.table, nil
}

// Close releases the underlying capture reader. It is idempotent and safe
// to call in any mode; a materialized source already closed its file during
// construction.
func (s *Source) Close() {
	if s.stream != nil {
		s.stream.Close()
	}
}
