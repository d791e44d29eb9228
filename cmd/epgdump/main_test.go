package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snapetech/epgdump/internal/store"
)

func writeTempStream(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.ts")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp stream: %v", err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	return string(b)
}

// aribASCII designates G0 as the Alphanumeric set and forces MSZ sizing so
// plain ASCII text round-trips through the ARIB decoder unchanged, instead
// of its default G0=Kanji two-byte interpretation or fullwidth glyph forms.
func aribASCII(s string) []byte {
	return append([]byte{0x1b, 0x28, 0x4a, 0x89}, []byte(s)...)
}

// buildSDTSection assembles a minimal, syntactically valid SDT section
// carrying one service descriptor, matching internal/sdt's own test
// builder but kept local here to exercise the full byte-stream pipeline.
func buildSDTSection(serviceID uint16, serviceType byte, name string) []byte {
	nameBytes := aribASCII(name)
	descBody := []byte{0x48, byte(3 + len(nameBytes)), serviceType, 0x00, byte(len(nameBytes))}
	descBody = append(descBody, nameBytes...)

	body := []byte{
		byte(serviceID >> 8), byte(serviceID),
		0x00,
		byte(len(descBody) >> 8 & 0x0f),
		byte(len(descBody)),
	}
	body = append(body, descBody...)

	sectionLength := 8 + len(body) + 4
	sec := make([]byte, 3+sectionLength)
	sec[0] = 0x42
	sec[1] = 0x80 | byte(sectionLength>>8&0x0f)
	sec[2] = byte(sectionLength)
	sec[3], sec[4] = 0x04, 0x08 // transport_stream_id = 1032
	sec[8], sec[9] = 0x00, 0x02 // original_network_id
	copy(sec[11:], body)
	return sec
}

// buildEITSection assembles a minimal present/following EIT section with
// one event carrying a short event descriptor.
func buildEITSection(serviceID, eventID uint16, title string) []byte {
	titleBytes := aribASCII(title)
	shortEvent := append([]byte{'j', 'p', 'n', byte(len(titleBytes))}, titleBytes...)
	shortEvent = append(shortEvent, 0) // zero-length subtitle
	descriptors := append([]byte{0x4d, byte(len(shortEvent))}, shortEvent...)

	event := []byte{byte(eventID >> 8), byte(eventID)}
	event = append(event, 0xff, 0xff, 0xff, 0xff, 0xff) // start time: all-FF (uncertain)
	event = append(event, 0x01, 0x00, 0x00)             // duration: 1 hour
	descLoopLen := len(descriptors)
	event = append(event, byte(descLoopLen>>8&0x0f), byte(descLoopLen))
	event = append(event, descriptors...)

	sectionLength := 11 + len(event) + 4
	buf := make([]byte, 14+len(event))
	buf[0] = 0x4e
	buf[1] = 0x80 | byte(sectionLength>>8&0x0f)
	buf[2] = byte(sectionLength)
	buf[3], buf[4] = byte(serviceID>>8), byte(serviceID)
	buf[5] = 0x01
	buf[6] = 0x00
	buf[8], buf[9] = 0x04, 0x08 // transport_stream_id
	buf[10], buf[11] = 0x00, 0x02
	buf[13] = 0x4e
	copy(buf[14:], event)
	return buf
}

// packetize wraps section bytes as a single PUSI=1 TS packet on pid,
// padding the 188-byte packet with 0xFF stuffing bytes.
func packetize(pid uint16, section []byte) []byte {
	pkt := make([]byte, 188)
	pkt[0] = 0x47
	pkt[1] = 0x40 | byte(pid>>8&0x1f) // PUSI=1
	pkt[2] = byte(pid)
	pkt[3] = 0x10 // adaptation_field_control=1 (payload only), cc=0
	pkt[4] = 0x00 // pointer_field
	n := copy(pkt[5:], section)
	for i := 5 + n; i < len(pkt); i++ {
		pkt[i] = 0xff
	}
	return pkt
}

func TestDecodeEndToEndProducesServiceWithEvent(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(packetize(0x11, buildSDTSection(100, 0x01, "MyChannel")))
	stream.Write(packetize(0x12, buildEITSection(100, 5001, "Program Title")))

	st := store.New(nil, nil)
	if err := decode(&stream, st, decodeOptions{ontv: "BS"}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	st.Compact()
	st.LinkSchedulePointers()

	svc := st.Find(100)
	if svc == nil {
		t.Fatal("expected service 100 to survive compaction")
	}
	if svc.Name != "MyChannel" {
		t.Fatalf("Name = %q, want MyChannel", svc.Name)
	}
	if len(svc.EITPF) != 1 {
		t.Fatalf("len(EITPF) = %d, want 1", len(svc.EITPF))
	}
	if svc.EITPF[0].Title != "Program Title" {
		t.Fatalf("Title = %q, want %q", svc.EITPF[0].Title, "Program Title")
	}
	if svc.EITPF[0].EventStatus != store.StatusStartTimeUncertain {
		t.Fatalf("EventStatus = %d, want StatusStartTimeUncertain", svc.EITPF[0].EventStatus)
	}
}

func TestRunWritesSerializedOutputToFile(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(packetize(0x11, buildSDTSection(100, 0x01, "MyChannel")))
	stream.Write(packetize(0x12, buildEITSection(100, 5001, "Program Title")))

	inPath := writeTempStream(t, stream.Bytes())
	outPath := inPath + ".out"

	code := run([]string{"--BS", inPath, outPath})
	if code != 0 {
		t.Fatalf("run() exit code = %d, want 0", code)
	}

	out := readFile(t, outPath)
	if !strings.Contains(out, `s:12:"display-name";s:9:"MyChannel";`) {
		t.Fatalf("output missing expected display-name field: %s", out)
	}
}

func TestRunRejectsMissingArguments(t *testing.T) {
	if code := run([]string{"--BS", "onlyonefile"}); code != 2 {
		t.Fatalf("run() exit code = %d, want 2 for missing outfile", code)
	}
}

func TestParseCutListParsesCommaSeparated(t *testing.T) {
	got, err := parseCutList("100, 200,300")
	if err != nil {
		t.Fatalf("parseCutList: %v", err)
	}
	want := []uint16{100, 200, 300}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
