package flowtable

import (
	"net"
	"testing"
	"time"

	"flowscope/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packet(srcIP string, srcPort uint16, dstIP string, dstPort uint16, proto uint8, length int) *model.ParsedPacket {
	return &model.ParsedPacket{
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		FiveTuple: model.FiveTuple{
			SrcIP:    net.ParseIP(srcIP),
			DstIP:    net.ParseIP(dstIP),
			SrcPort:  srcPort,
			DstPort:  dstPort,
			Protocol: proto,
		},
		Length: length,
	}
}

func TestResolve_Symmetric(t *testing.T) {
	forward := packet("10.0.0.1", 49152, "192.168.0.1", 80, 6, 100)
	reply := packet("192.168.0.1", 80, "10.0.0.1", 49152, 6, 100)

	assert.Equal(t, Resolve(forward.FiveTuple), Resolve(reply.FiveTuple))
}

func TestResolve_SamePortsSwappedAddresses(t *testing.T) {
	a := packet("10.0.0.1", 5000, "10.0.0.2", 5000, 17, 40)
	b := packet("10.0.0.2", 5000, "10.0.0.1", 5000, 17, 40)

	assert.Equal(t, Resolve(a.FiveTuple), Resolve(b.FiveTuple))
}

func TestResolve_ProtocolAware(t *testing.T) {
	tcp := packet("10.0.0.1", 53, "10.0.0.2", 53, 6, 60)
	udp := packet("10.0.0.1", 53, "10.0.0.2", 53, 17, 60)

	assert.NotEqual(t, Resolve(tcp.FiveTuple), Resolve(udp.FiveTuple))
}

func TestResolve_PortlessProtocol(t *testing.T) {
	echo := packet("10.0.0.1", 0, "10.0.0.2", 0, 1, 84)
	reply := packet("10.0.0.2", 0, "10.0.0.1", 0, 1, 84)

	key := Resolve(echo.FiveTuple)
	assert.Equal(t, key, Resolve(reply.FiveTuple))
	assert.Zero(t, key.PortA)
	assert.Zero(t, key.PortB)
}

func TestTable_PushMergesDirections(t *testing.T) {
	table := New()
	table.Push(packet("10.0.0.1", 49152, "192.168.0.1", 80, 6, 100))
	table.Push(packet("192.168.0.1", 80, "10.0.0.1", 49152, 6, 250))

	require.Equal(t, 1, table.Len())

	rec, ok := table.Lookup(Resolve(model.FiveTuple{
		SrcIP: net.ParseIP("10.0.0.1"), DstIP: net.ParseIP("192.168.0.1"),
		SrcPort: 49152, DstPort: 80, Protocol: 6,
	}))
	require.True(t, ok)
	assert.Equal(t, uint64(2), rec.PacketCount)
	assert.Equal(t, uint64(350), rec.ByteCount)
	assert.Len(t, rec.Packets, 2)
}

func TestTable_EveryPushRetrievable(t *testing.T) {
	packets := []*model.ParsedPacket{
		packet("10.0.0.1", 49152, "192.168.0.1", 80, 6, 100),
		packet("10.0.0.2", 40000, "192.168.0.1", 443, 6, 60),
		packet("192.168.0.1", 80, "10.0.0.1", 49152, 6, 1400),
		packet("10.0.0.3", 53000, "8.8.8.8", 53, 17, 70),
	}

	table := New()
	for _, pkt := range packets {
		table.Push(pkt)
	}

	var sum uint64
	for _, rec := range table.Records() {
		sum += rec.PacketCount
	}
	assert.Equal(t, uint64(len(packets)), sum)

	for _, pkt := range packets {
		rec, ok := table.Lookup(Resolve(pkt.FiveTuple))
		require.True(t, ok, "packet %s not retrievable", pkt.FiveTuple)
		assert.Contains(t, rec.Packets, pkt)
	}
}

func TestTable_RecordsKeepFirstSeenOrder(t *testing.T) {
	table := New()
	table.Push(packet("10.0.0.1", 1000, "10.0.0.9", 80, 6, 10))
	table.Push(packet("10.0.0.2", 1000, "10.0.0.9", 80, 6, 10))
	table.Push(packet("10.0.0.9", 80, "10.0.0.1", 1000, 6, 10)) // existing flow
	table.Push(packet("10.0.0.3", 1000, "10.0.0.9", 80, 6, 10))

	records := table.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "10.0.0.1", records[0].Key.AddrA)
	assert.Equal(t, "10.0.0.2", records[1].Key.AddrA)
	assert.Equal(t, "10.0.0.3", records[2].Key.AddrA)
}

func TestTable_IdempotentBuild(t *testing.T) {
	packets := []*model.ParsedPacket{
		packet("10.0.0.1", 49152, "192.168.0.1", 80, 6, 100),
		packet("192.168.0.1", 80, "10.0.0.1", 49152, 6, 1400),
		packet("10.0.0.3", 53000, "8.8.8.8", 53, 17, 70),
	}

	build := func() *Table {
		table := New()
		for _, pkt := range packets {
			table.Push(pkt)
		}
		return table
	}

	first, second := build().Records(), build().Records()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Key, second[i].Key)
		assert.Equal(t, first[i].PacketCount, second[i].PacketCount)
		assert.Equal(t, first[i].ByteCount, second[i].ByteCount)
		assert.Equal(t, first[i].Packets, second[i].Packets)
	}
}

func TestTable_TracksFirstAndLastSeen(t *testing.T) {
	early := packet("10.0.0.1", 49152, "192.168.0.1", 80, 6, 100)
	late := packet("192.168.0.1", 80, "10.0.0.1", 49152, 6, 100)
	late.Timestamp = early.Timestamp.Add(3 * time.Second)

	table := New()
	table.Push(early)
	table.Push(late)

	rec, ok := table.Lookup(Resolve(early.FiveTuple))
	require.True(t, ok)
	assert.Equal(t, early.Timestamp, rec.FirstSeen)
	assert.Equal(t, late.Timestamp, rec.LastSeen)
}
