// Package arib decodes ARIB STD-B24 8-unit coded strings (the text
// encoding used inside SDT/EIT descriptors) into UTF-8.
package arib

import (
	"golang.org/x/text/encoding/japanese"
)

// charSize tracks the MSZ/NSZ space-width control state.
type charSize int

const (
	sizeNormal charSize = iota
	sizeMedium
)

// Decoder holds the G0-G3 designation and GL/GR invocation state a decode
// pass accumulates as it walks an ARIB byte string. Create one per string;
// state does not carry over between independent descriptor strings.
type Decoder struct {
	g      [4]codeSet
	gl, gr int
	size   charSize
}

// NewDecoder returns a Decoder in the ARIB default state: G0=Kanji,
// G1=Alphanumeric, G2=Hiragana, G3=Katakana, GL invokes G0, GR invokes G2.
func NewDecoder() *Decoder {
	return &Decoder{
		g:    [4]codeSet{codeKanji, codeAlphanumeric, codeHiragana, codeKatakana},
		gl:   0,
		gr:   2,
		size: sizeNormal,
	}
}

// Decode converts an ARIB-encoded byte string to UTF-8 text. Unrecognized
// escape sequences and control codes are treated as no-ops (soft failure):
// they advance past the offending bytes without emitting a character or
// aborting the decode.
func (d *Decoder) Decode(data []byte) string {
	var out []byte
	for i := 0; i < len(data); {
		n, s := d.parseOne(data, i)
		if n <= 0 {
			n = 1
		}
		out = append(out, s...)
		i += n
	}
	return string(out)
}

func (d *Decoder) parseOne(data []byte, i int) (int, string) {
	b := data[i]
	switch {
	case b >= 0x21 && b <= 0x7e:
		return d.graphicChar(d.g[d.gl], data, i)
	case b >= 0xa1 && b <= 0xfe:
		return d.graphicCharMasked(d.g[d.gr], data, i)
	default:
		return d.controlCode(data, i)
	}
}

func (d *Decoder) graphicChar(set codeSet, data []byte, i int) (int, string) {
	if twoByte[set] {
		if i+1 >= len(data) {
			return 1, ""
		}
		return 2, decodeTwoByte(set, data[i], data[i+1])
	}
	return 1, singleByteChar(set, data[i], d.size)
}

func (d *Decoder) graphicCharMasked(set codeSet, data []byte, i int) (int, string) {
	if twoByte[set] {
		if i+1 >= len(data) {
			return 1, ""
		}
		return 2, decodeTwoByte(set, data[i]&0x7f, data[i+1]&0x7f)
	}
	return 1, singleByteChar(set, data[i]&0x7f, d.size)
}

func singleByteChar(set codeSet, code byte, size charSize) string {
	if set == codeAlphanumeric || set == codePropAlphanumeric {
		if size == sizeMedium {
			return string(rune(code))
		}
	}
	return singleByteTable(set, code)
}

// decodeTwoByte resolves a two-byte code point under the given set: Kanji
// and the two JIS-compatible Kanji planes delegate to an ISO-2022-JP
// decoder, Additional Symbols uses the symbol lookup, everything else
// yields no character.
func decodeTwoByte(set codeSet, c1, c2 byte) string {
	switch set {
	case codeKanji, codeJISKanjiPlane1, codeJISKanjiPlane2:
		return decodeKanji(c1, c2)
	case codeAdditionalSymbols:
		return additionalSymbol(uint16(c1)<<8 | uint16(c2))
	default:
		return ""
	}
}

// decodeKanji wraps a two-byte JIS code in the ISO-2022-JP kanji-in/out
// escape sequence and runs it through the standard decoder, the same
// delegation the ARIB text decoder is specified to use for multi-byte
// ideographs.
func decodeKanji(c1, c2 byte) string {
	seq := []byte{0x1b, 0x24, 0x42, c1, c2, 0x1b, 0x28, 0x42}
	out, err := japanese.ISO2022JP.NewDecoder().Bytes(seq)
	if err != nil {
		return ""
	}
	return string(out)
}

// controlCode handles the C0/C1 control-code range: locking/single shifts,
// escape-sequence dispatch, MSZ/NSZ size control, and space. Bytes 0x00-0x20
// are the C0 set (GL side); the remainder handled here (0x7f, 0x80-0xa0,
// 0xff) goes through the C1 switch. 0x0D (what would be a line feed) is an explicit no-op rather
// than a line break.
func (d *Decoder) controlCode(data []byte, i int) (int, string) {
	b := data[i]
	if b <= 0x20 {
		switch b {
		case 0x0f: // LS0
			d.gl = 0
			return 1, ""
		case 0x0e: // LS1
			d.gl = 1
			return 1, ""
		case 0x0d: // no-op, not a line break
			return 1, ""
		case 0x1b: // ESC
			return d.escape(data, i)
		case 0x19: // SS2
			return d.singleShift(2, data, i)
		case 0x1d: // SS3
			return d.singleShift(3, data, i)
		case 0x20:
			return 1, d.spaceChar()
		default:
			if twoByte[d.g[d.gl]] {
				return 2, ""
			}
			return 1, ""
		}
	}

	switch b {
	case 0x89: // MSZ
		d.size = sizeMedium
		return 1, ""
	case 0x8a: // NSZ
		d.size = sizeNormal
		return 1, ""
	case 0xa0:
		return 1, d.spaceChar()
	default:
		if twoByte[d.g[d.gr]] {
			return 2, ""
		}
		return 1, ""
	}
}

func (d *Decoder) spaceChar() string {
	switch d.size {
	case sizeMedium:
		return " "
	default:
		return "　"
	}
}

// singleShift invokes Gn for exactly the next single character, restoring
// GL afterward.
func (d *Decoder) singleShift(gn int, data []byte, i int) (int, string) {
	if i+1 >= len(data) {
		return 1, ""
	}
	saved := d.gl
	d.gl = gn
	n, s := d.parseOne(data, i+1)
	d.gl = saved
	return n + 1, s
}

// escape dispatches an ESC-prefixed sequence: the shift-invocation forms
// LS2/LS3/LS2R/LS3R/LS1R, or a G0-G3 designation sequence.
func (d *Decoder) escape(data []byte, i int) (int, string) {
	if i+1 >= len(data) {
		return 1, ""
	}
	switch data[i+1] {
	case 0x6e: // LS2
		d.gl = 2
		return 2, ""
	case 0x6f: // LS3
		d.gl = 3
		return 2, ""
	case 0x7c: // LS3R
		d.gr = 3
		return 2, ""
	case 0x7d: // LS2R
		d.gr = 2
		return 2, ""
	case 0x7e: // LS1R
		d.gr = 1
		return 2, ""
	default:
		return d.designation(data, i)
	}
}

// designation parses an ESC-based G0-G3 graphic-set designation sequence,
// including the DRCS ("$ ... 0x20 Fbyte") form, which this decoder accepts
// syntactically but never renders (DRCS glyphs have no text form): the
// register is marked unknown, so codes invoked through it emit nothing.
func (d *Decoder) designation(data []byte, i int) (int, string) {
	n := len(data)
	if i+1 >= n {
		return 1, ""
	}

	if data[i+1] == 0x24 {
		if i+2 >= n {
			return 1, ""
		}
		if data[i+2] >= 0x28 && data[i+2] <= 0x2b {
			if i+3 >= n {
				return 1, ""
			}
			if data[i+3] == 0x20 {
				if i+4 >= n {
					return 1, ""
				}
				d.g[data[i+2]-0x28] = codeUnknown
				return 5, "" // DRCS designation, no text form
			}
			d.setG(int(data[i+2]-0x28), data[i+3])
			return 4, ""
		}
		// ESC $ F: designates G0 to a two-byte set.
		d.setG(0, data[i+2])
		return 3, ""
	}

	if data[i+1] >= 0x28 && data[i+1] <= 0x2b {
		if i+2 >= n {
			return 1, ""
		}
		if data[i+2] == 0x20 {
			if i+3 >= n {
				return 1, ""
			}
			d.g[data[i+1]-0x28] = codeUnknown
			return 4, "" // DRCS designation, no text form
		}
		d.setG(int(data[i+1]-0x28), data[i+2])
		return 3, ""
	}

	return 1, ""
}

// setG designates register gNum (0-3) to the code set named by fByte.
// An unrecognized F-byte is a soft no-op: the register is left untouched.
func (d *Decoder) setG(gNum int, fByte byte) {
	if gNum < 0 || gNum > 3 {
		return
	}
	if set, ok := designationCode[fByte]; ok {
		d.g[gNum] = set
	}
}
