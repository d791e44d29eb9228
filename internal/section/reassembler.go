// Package section reassembles PSI/SI sections out of TS packet payloads for
// a fixed set of subscribed PIDs, honoring section-length framing and
// continuity-counter drop signals from the packet reader.
package section

import "github.com/snapetech/epgdump/internal/tspacket"

// maxBufferedSection is the accumulation buffer size per subscribed PID:
// one section may reach 4096 bytes plus a small header margin.
const maxBufferedSection = 4233

// maxDeclaredSection is the largest section length (header + payload + CRC)
// the reassembler will accept; larger declarations drop the cache.
const maxDeclaredSection = 4096

// Section is an immutable, fully reassembled PSI/SI section.
type Section struct {
	PID     uint16
	TableID byte
	Data    []byte // declared_length bytes: header through CRC-32
}

type gate struct {
	tableIDs func(byte) bool
}

var gates = map[uint16]gate{
	0x11: {tableIDs: func(id byte) bool { return id == 0x42 || id == 0x46 }},
	0x12: {tableIDs: func(id byte) bool { return id >= 0x4E && id <= 0x6F }},
}

type cache struct {
	pid        uint16
	buf        [maxBufferedSection]byte
	declared   int
	filled     int
	inProgress bool
}

// Reassembler holds one section cache per subscribed PID.
type Reassembler struct {
	caches map[uint16]*cache
}

// New returns a Reassembler subscribed to the given PIDs (typically 0x11
// SDT/BAT and 0x12 EIT).
func New(pids ...uint16) *Reassembler {
	caches := make(map[uint16]*cache, len(pids))
	for _, pid := range pids {
		caches[pid] = &cache{pid: pid}
	}
	return &Reassembler{caches: caches}
}

// Ingest feeds one TS packet into its cache (if subscribed) and returns any
// sections that completed as a result. Zero, one, or more than one section
// may complete from a single packet (multiple sections packed into one TS
// packet's payload).
func (re *Reassembler) Ingest(pkt tspacket.Packet) []Section {
	c, ok := re.caches[pkt.PID]
	if !ok {
		return nil
	}

	if pkt.PayloadUnitStart {
		return c.startNew(pkt.Payload)
	}
	return c.continueSection(pkt)
}

func (c *cache) reset() {
	c.declared = 0
	c.filled = 0
	c.inProgress = false
}

// startNew begins a new section from a PUSI=1 packet's payload, emitting
// every complete section packed into it and buffering any trailing partial
// section for continuation packets.
func (c *cache) startNew(payload []byte) []Section {
	c.reset()
	var out []Section
	for len(payload) >= 3 {
		tableID := payload[0]
		sectionSyntax := payload[1]&0x80 != 0
		sectionLength := int(payload[1]&0x0F)<<8 | int(payload[2])
		declared := sectionLength + 3

		g, gated := gates[c.pid]
		if gated && (!sectionSyntax || !g.tableIDs(tableID)) {
			return out
		}
		if declared > maxDeclaredSection {
			return out
		}

		if declared <= len(payload) {
			data := make([]byte, declared)
			copy(data, payload[:declared])
			out = append(out, Section{PID: c.pid, TableID: tableID, Data: data})

			rest := payload[declared:]
			if len(rest) == 0 || rest[0] == 0xFF {
				return out
			}
			payload = rest
			continue
		}

		// Section spans into continuation packets.
		c.declared = declared
		c.filled = copy(c.buf[:], payload)
		c.inProgress = true
		return out
	}
	return out
}

// continueSection feeds a PUSI=0 packet's payload into an in-progress
// section. A continuity-counter drop discards the partial section with no
// recovery.
func (c *cache) continueSection(pkt tspacket.Packet) []Section {
	if !c.inProgress {
		return nil
	}
	if pkt.Dropped {
		c.reset()
		return nil
	}

	remaining := c.declared - c.filled
	n := len(pkt.Payload)
	if n > remaining {
		n = remaining
	}
	copy(c.buf[c.filled:c.filled+n], pkt.Payload[:n])
	c.filled += n

	if c.filled < c.declared {
		return nil
	}

	data := make([]byte, c.declared)
	copy(data, c.buf[:c.declared])
	tableID := data[0]
	c.reset()
	return []Section{{PID: pkt.PID, TableID: tableID, Data: data}}
}
