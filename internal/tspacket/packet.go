// Package tspacket frames a raw MPEG-2 Transport Stream byte source into
// 188-byte packets, tracking per-PID continuity counters so callers can
// detect dropped packets before they feed a section reassembler.
package tspacket

import (
	"bufio"
	"io"
)

const (
	syncByte   = 0x47
	packetLen  = 188
	maxPayload = 184
)

// Packet is one parsed TS packet's header fields plus its payload slice
// (adaptation field and pointer field, if any, already stripped).
type Packet struct {
	PID               uint16
	Scrambled         bool
	PayloadUnitStart  bool
	ContinuityCounter uint8
	Dropped           bool // a continuity-counter gap was observed for this PID
	Payload           []byte
}

type ccState struct {
	next uint8
	set  bool
}

// Reader reads TS packets from an underlying byte stream, resyncing on the
// 0x47 sync byte and tracking a continuity counter per PID. It retains no
// resynchronization state across packets: a non-sync byte is simply
// discarded and the next byte is tried.
type Reader struct {
	br *bufio.Reader
	cc map[uint16]ccState
}

// NewReader wraps r for packet-at-a-time reading.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		br: bufio.NewReaderSize(r, 188*64),
		cc: make(map[uint16]ccState),
	}
}

// Next returns the next well-formed packet, skipping malformed ones, until
// the underlying reader is exhausted, at which point it returns io.EOF.
func (r *Reader) Next() (Packet, error) {
	for {
		raw, err := r.readRaw()
		if err != nil {
			return Packet{}, err
		}
		if raw[1]&0x80 != 0 { // transport_error_indicator
			continue
		}

		pid := uint16(raw[1]&0x1F)<<8 | uint16(raw[2])
		tsc := raw[3] >> 6
		afc := (raw[3] >> 4) & 0x3
		cc := raw[3] & 0x0F

		payload, pusi, ok := splitPayload(raw, afc)
		dropped := r.trackContinuity(pid, afc, cc)
		if !ok {
			continue
		}

		return Packet{
			PID:               pid,
			Scrambled:         tsc != 0,
			PayloadUnitStart:  pusi,
			ContinuityCounter: cc,
			Dropped:           dropped,
			Payload:           payload,
		}, nil
	}
}

// readRaw locates the next sync byte and returns the 188 bytes starting
// there.
func (r *Reader) readRaw() ([packetLen]byte, error) {
	var pkt [packetLen]byte
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			return pkt, err
		}
		if b != syncByte {
			continue
		}
		pkt[0] = b
		if _, err := io.ReadFull(r.br, pkt[1:]); err != nil {
			if err == io.ErrUnexpectedEOF {
				err = io.EOF
			}
			return pkt, err
		}
		return pkt, nil
	}
}

// trackContinuity updates the per-PID continuity-counter state and reports
// whether the observed counter signals a drop. Packets with
// adaptation_field_control == 2 carry no payload and do not advance the
// expected counter.
func (r *Reader) trackContinuity(pid uint16, afc, cc byte) bool {
	st := r.cc[pid]
	dropped := st.set && cc != st.next
	if afc != 2 {
		r.cc[pid] = ccState{next: (cc + 1) & 0x0F, set: true}
	}
	return dropped
}

// splitPayload computes the payload slice for a raw packet given its
// adaptation_field_control, honoring the payload_unit_start_indicator
// pointer-field skip. ok is false when the packet carries no usable
// payload.
func splitPayload(raw [packetLen]byte, afc byte) (payload []byte, pusi bool, ok bool) {
	pusi = raw[1]&0x40 != 0

	var start int
	switch afc {
	case 1:
		start = 4
	case 2:
		return nil, pusi, false
	case 3:
		adaptLen := int(raw[4])
		if adaptLen >= 183 {
			return nil, pusi, false
		}
		start = 4 + 1 + adaptLen
	default:
		return nil, pusi, false
	}

	if pusi {
		start++ // skip the pointer_field byte itself
	}
	if start >= packetLen {
		return nil, pusi, false
	}

	length := packetLen - start
	if length < 1 || length > maxPayload {
		return nil, pusi, false
	}

	buf := make([]byte, length)
	copy(buf, raw[start:packetLen])
	return buf, pusi, true
}
