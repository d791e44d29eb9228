package arib

import "testing"

func TestDecodeKanjiDesignationAndIdeographicSpace(t *testing.T) {
	data := []byte{0x1b, 0x24, 0x42, 0x46, 0x7c, 0x21, 0x21}
	got := NewDecoder().Decode(data)
	want := "日　"
	if got != want {
		t.Fatalf("Decode = %q, want %q", got, want)
	}
}

func TestDecodeAlphanumericDefaultSet(t *testing.T) {
	// G1 defaults to Alphanumeric; LS1 invokes it, then "ABC".
	data := []byte{0x0e, 0x41, 0x42, 0x43}
	got := NewDecoder().Decode(data)
	want := "ＡＢＣ"
	if got != want {
		t.Fatalf("Decode = %q, want %q", got, want)
	}
}

func TestDecodeHiraganaDefaultGR(t *testing.T) {
	// GR defaults to G2 = Hiragana; 0xa1+0x21=0xc2 -> index 0x42 in table.
	data := []byte{0xc2}
	got := NewDecoder().Decode(data)
	want := hiraganaTable[0x42]
	if got != want {
		t.Fatalf("Decode = %q, want %q", got, want)
	}
}

func TestDecodeMSZGivesHalfWidthSpace(t *testing.T) {
	data := []byte{0x89, 0x20} // MSZ then space
	got := NewDecoder().Decode(data)
	if got != " " {
		t.Fatalf("Decode = %q, want half-width space", got)
	}
}

func TestDecodeNSZGivesFullWidthSpace(t *testing.T) {
	data := []byte{0x8a, 0x20} // NSZ then space
	got := NewDecoder().Decode(data)
	if got != "　" {
		t.Fatalf("Decode = %q, want full-width space", got)
	}
}

func TestDecodeLineFeedIsNoOp(t *testing.T) {
	data := []byte{0x0e, 0x41, 0x0d, 0x42}
	got := NewDecoder().Decode(data)
	want := "Ａ" + "Ｂ"
	if got != want {
		t.Fatalf("Decode = %q, want %q (0x0D must not insert a break)", got, want)
	}
}

func TestDecodeUnrecognizedEscapeFByteIsSoftNoOp(t *testing.T) {
	// ESC ( followed by an unrecognized F-byte: must not panic and must
	// leave G0 untouched (still Kanji, the default).
	data := []byte{0x1b, 0x28, 0xff, 0x41, 0x42}
	got := NewDecoder().Decode(data)
	if got == "" {
		t.Fatal("expected some output to continue after the unrecognized escape")
	}
}

func TestDecodeAdditionalSymbolsTable1(t *testing.T) {
	// Designate G0 to Additional Symbols (F-byte 0x3b), then code 0x7a50 ("[HV]").
	data := []byte{0x1b, 0x28, 0x3b, 0x7a, 0x50}
	got := NewDecoder().Decode(data)
	want := "[HV]"
	if got != want {
		t.Fatalf("Decode = %q, want %q", got, want)
	}
}

func TestDecodeSingleShift2UsesG2ForOneCharOnly(t *testing.T) {
	// SS2 invokes G2 (Hiragana by default) for exactly one char, then GL
	// (still G0=Kanji by default) resumes, so the following pair 0x21 0x21
	// decodes as the Kanji ideographic space.
	data := []byte{0x19, 0x21, 0x21, 0x21} // SS2, Hiragana 0x21 -> "ぁ", then Kanji 0x2121
	got := NewDecoder().Decode(data)
	want := hiraganaTable[0x21] + "　"
	if got != want {
		t.Fatalf("Decode = %q, want %q", got, want)
	}
}
