package tspacket

import (
	"bytes"
	"io"
	"testing"
)

// buildPacket returns a 188-byte TS packet with PUSI set, no adaptation
// field, and the given PID/continuity counter/payload.
func buildPacket(pid uint16, cc uint8, payload []byte) []byte {
	pkt := make([]byte, packetLen)
	pkt[0] = syncByte
	pkt[1] = byte(0x40 | (pid>>8)&0x1F) // PUSI=1
	pkt[2] = byte(pid & 0xFF)
	pkt[3] = 0x10 | (cc & 0x0F) // payload only
	pkt[4] = 0x00               // pointer_field = 0
	n := copy(pkt[5:], payload)
	for i := 5 + n; i < packetLen; i++ {
		pkt[i] = 0xFF
	}
	return pkt
}

func TestReaderBasicPacket(t *testing.T) {
	payload := []byte{0x42, 0x01, 0x02, 0x03}
	raw := buildPacket(0x11, 3, payload)
	r := NewReader(bytes.NewReader(raw))

	pkt, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if pkt.PID != 0x11 {
		t.Fatalf("PID = %#x, want 0x11", pkt.PID)
	}
	if !pkt.PayloadUnitStart {
		t.Fatal("expected PUSI")
	}
	if !bytes.Equal(pkt.Payload[:len(payload)], payload) {
		t.Fatalf("payload = %v, want %v", pkt.Payload[:len(payload)], payload)
	}
	if pkt.Dropped {
		t.Fatal("first packet on a PID must never report a drop")
	}

	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("second Next err = %v, want io.EOF", err)
	}
}

func TestReaderSkipsResyncsOnGarbage(t *testing.T) {
	good := buildPacket(0x12, 0, []byte{0x4E})
	var buf bytes.Buffer
	buf.WriteByte(0x00) // garbage before sync
	buf.WriteByte(0x11)
	buf.Write(good)

	r := NewReader(&buf)
	pkt, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if pkt.PID != 0x12 {
		t.Fatalf("PID = %#x, want 0x12", pkt.PID)
	}
}

func TestReaderContinuityDrop(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildPacket(0x12, 3, []byte{0x01}))
	buf.Write(buildPacket(0x12, 4, []byte{0x02}))
	buf.Write(buildPacket(0x12, 7, []byte{0x03})) // gap: expected 5

	r := NewReader(&buf)
	for i, wantDrop := range []bool{false, false, true} {
		pkt, err := r.Next()
		if err != nil {
			t.Fatalf("packet %d: %v", i, err)
		}
		if pkt.Dropped != wantDrop {
			t.Fatalf("packet %d: Dropped = %v, want %v", i, pkt.Dropped, wantDrop)
		}
	}
}

func TestReaderTransportErrorSkipped(t *testing.T) {
	bad := buildPacket(0x11, 0, []byte{0xAA})
	bad[1] |= 0x80 // transport_error_indicator
	good := buildPacket(0x12, 0, []byte{0xBB})

	var buf bytes.Buffer
	buf.Write(bad)
	buf.Write(good)

	r := NewReader(&buf)
	pkt, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if pkt.PID != 0x12 {
		t.Fatalf("expected the errored packet to be skipped, got PID %#x", pkt.PID)
	}
}

func TestReaderAdaptationFieldOnlyHasNoPayload(t *testing.T) {
	pkt := make([]byte, packetLen)
	pkt[0] = syncByte
	pkt[1] = 0x00
	pkt[2] = 0x13
	pkt[3] = 0x20 // adaptation field only (afc=2)
	pkt[4] = 183  // adaptation_field_length fills the rest
	for i := 5; i < packetLen; i++ {
		pkt[i] = 0xFF
	}
	good := buildPacket(0x14, 0, []byte{0x01})

	var buf bytes.Buffer
	buf.Write(pkt)
	buf.Write(good)

	r := NewReader(&buf)
	got, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.PID != 0x14 {
		t.Fatalf("expected no-payload packet skipped, got PID %#x", got.PID)
	}
}

func TestReaderOversizeAdaptationFieldSkipped(t *testing.T) {
	pkt := make([]byte, packetLen)
	pkt[0] = syncByte
	pkt[1] = 0x00
	pkt[2] = 0x15
	pkt[3] = 0x30 // adaptation field + payload
	pkt[4] = 200  // invalid: >= 183
	good := buildPacket(0x16, 0, []byte{0x01})

	var buf bytes.Buffer
	buf.Write(pkt)
	buf.Write(good)

	r := NewReader(&buf)
	got, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.PID != 0x16 {
		t.Fatalf("expected oversize adaptation field packet skipped, got PID %#x", got.PID)
	}
}
