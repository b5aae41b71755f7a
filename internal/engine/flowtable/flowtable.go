package flowtable

import (
	"flowscope/internal/model"
)

// Table maps canonical flow keys to their flow records. It is populated
// once, synchronously, from a single ordered packet sequence, so it holds no
// locks: concurrent Push calls are unsupported and must be serialized by the
// caller if ever required.
//
// The table performs no sorting of its own. Insertion order within a record
// matches the order packets were pushed; callers wanting chronological flow
// reconstruction must sort the feeding sequence by timestamp before the
// first Push.
type Table struct {
	flows map[model.FlowKey]*model.FlowRecord
	// order remembers first-seen order of keys for Records.
	order []model.FlowKey
}

// New creates an empty flow table.
func New() *Table {
	return &Table{
		flows: make(map[model.FlowKey]*model.FlowRecord),
	}
}

// Push resolves the packet's flow key, creating a new record on first sight,
// and appends the packet to the matching record. It always succeeds for a
// well-formed packet; malformed frames never reach this stage.
func (t *Table) Push(pkt *model.ParsedPacket) {
	key := Resolve(pkt.FiveTuple)

	rec, ok := t.flows[key]
	if !ok {
		rec = &model.FlowRecord{
			Key:       key,
			FirstSeen: pkt.Timestamp,
		}
		t.flows[key] = rec
		t.order = append(t.order, key)
	}

	rec.Packets = append(rec.Packets, pkt)
	rec.PacketCount++
	rec.ByteCount += uint64(pkt.Length)
	rec.LastSeen = pkt.Timestamp
}

// Lookup returns the record for a key, or ok=false when the key has never
// been pushed. It never mutates the table.
func (t *Table) Lookup(key model.FlowKey) (*model.FlowRecord, bool) {
	rec, ok := t.flows[key]
	return rec, ok
}

// Records returns all flow records in key-insertion order, i.e. ordered by
// the first-seen packet of each flow.
func (t *Table) Records() []*model.FlowRecord {
	records := make([]*model.FlowRecord, 0, len(t.order))
	for _, key := range t.order {
		records = append(records, t.flows[key])
	}
	return records
}

// Len returns the number of distinct flows in the table.
func (t *Table) Len() int {
	return len(t.flows)
}
