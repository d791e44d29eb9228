package arib

// codeSet identifies which 94/96-character graphic set a G0-G3 register is
// currently designated to.
type codeSet int

const (
	codeUnknown codeSet = iota
	codeKanji
	codeAlphanumeric
	codeHiragana
	codeKatakana
	codeMosaicA
	codeMosaicB
	codeMosaicC
	codeMosaicD
	codePropAlphanumeric
	codePropHiragana
	codePropKatakana
	codeJISX0201Katakana
	codeJISKanjiPlane1
	codeJISKanjiPlane2
	codeAdditionalSymbols
)

// twoByte reports whether a code set uses two bytes per character.
var twoByte = [16]bool{
	codeUnknown:           false,
	codeKanji:             true,
	codeAlphanumeric:      false,
	codeHiragana:          false,
	codeKatakana:          false,
	codeMosaicA:           false,
	codeMosaicB:           false,
	codeMosaicC:           false,
	codeMosaicD:           false,
	codePropAlphanumeric:  false,
	codePropHiragana:      false,
	codePropKatakana:      false,
	codeJISX0201Katakana:  false,
	codeJISKanjiPlane1:    true,
	codeJISKanjiPlane2:    true,
	codeAdditionalSymbols: true,
}

// designationCode maps the F-byte that follows an ESC $ or ESC G0-G3
// designation sequence to the code set it selects. An unrecognized F-byte
// leaves the register untouched (soft no-op).
var designationCode = map[byte]codeSet{
	0x42: codeKanji,
	0x4a: codeAlphanumeric,
	0x30: codeHiragana,
	0x31: codeKatakana,
	0x32: codeMosaicA,
	0x33: codeMosaicB,
	0x34: codeMosaicC,
	0x35: codeMosaicD,
	0x36: codePropAlphanumeric,
	0x37: codePropHiragana,
	0x38: codePropKatakana,
	0x49: codeJISX0201Katakana,
	0x39: codeJISKanjiPlane1,
	0x3a: codeJISKanjiPlane2,
	0x3b: codeAdditionalSymbols,
}

var alphanumericTable = [0x80]string{
	"　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　",
	"　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　",
	"　", "！", "”", "＃", "＄", "％", "＆", "’", "（", "）", "＊", "＋", "，", "－", "．", "／",
	"０", "１", "２", "３", "４", "５", "６", "７", "８", "９", "：", "；", "＜", "＝", "＞", "？",
	"＠", "Ａ", "Ｂ", "Ｃ", "Ｄ", "Ｅ", "Ｆ", "Ｇ", "Ｈ", "Ｉ", "Ｊ", "Ｋ", "Ｌ", "Ｍ", "Ｎ", "Ｏ",
	"Ｐ", "Ｑ", "Ｒ", "Ｓ", "Ｔ", "Ｕ", "Ｖ", "Ｗ", "Ｘ", "Ｙ", "Ｚ", "［", "￥", "］", "＾", "＿",
	"　", "ａ", "ｂ", "ｃ", "ｄ", "ｅ", "ｆ", "ｇ", "ｈ", "ｉ", "ｊ", "ｋ", "ｌ", "ｍ", "ｎ", "ｏ",
	"ｐ", "ｑ", "ｒ", "ｓ", "ｔ", "ｕ", "ｖ", "ｗ", "ｘ", "ｙ", "ｚ", "｛", "｜", "｝", "￣", "　",
}

var hiraganaTable = [0x80]string{
	"　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　",
	"　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　",
	"　", "ぁ", "あ", "ぃ", "い", "ぅ", "う", "ぇ", "え", "ぉ", "お", "か", "が", "き", "ぎ", "く",
	"ぐ", "け", "げ", "こ", "ご", "さ", "ざ", "し", "じ", "す", "ず", "せ", "ぜ", "そ", "ぞ", "た",
	"だ", "ち", "ぢ", "っ", "つ", "づ", "て", "で", "と", "ど", "な", "に", "ぬ", "ね", "の", "は",
	"ば", "ぱ", "ひ", "び", "ぴ", "ふ", "ぶ", "ぷ", "へ", "べ", "ぺ", "ほ", "ぼ", "ぽ", "ま", "み",
	"む", "め", "も", "ゃ", "や", "ゅ", "ゆ", "ょ", "よ", "ら", "り", "る", "れ", "ろ", "ゎ", "わ",
	"ゐ", "ゑ", "を", "ん", "　", "　", "　", "ゝ", "ゞ", "ー", "。", "「", "」", "、", "・", "　",
}

var katakanaTable = [0x80]string{
	"　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　",
	"　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　",
	"　", "ァ", "ア", "ィ", "イ", "ゥ", "ウ", "ェ", "エ", "ォ", "オ", "カ", "ガ", "キ", "ギ", "ク",
	"グ", "ケ", "ゲ", "コ", "ゴ", "サ", "ザ", "シ", "ジ", "ス", "ズ", "セ", "ゼ", "ソ", "ゾ", "タ",
	"ダ", "チ", "ヂ", "ッ", "ツ", "ヅ", "テ", "デ", "ト", "ド", "ナ", "ニ", "ヌ", "ネ", "ノ", "ハ",
	"バ", "パ", "ヒ", "ビ", "ピ", "フ", "ブ", "プ", "ヘ", "ベ", "ペ", "ホ", "ボ", "ポ", "マ", "ミ",
	"ム", "メ", "モ", "ャ", "ヤ", "ュ", "ユ", "ョ", "ヨ", "ラ", "リ", "ル", "レ", "ロ", "ヮ", "ワ",
	"ヰ", "ヱ", "ヲ", "ン", "ヴ", "ヵ", "ヶ", "ヽ", "ヾ", "ー", "。", "「", "」", "、", "・", "　",
}

var jisX0201KatakanaTable = [0x80]string{
	"　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　",
	"　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　",
	"　", "。", "「", "」", "、", "・", "ヲ", "ァ", "ィ", "ゥ", "ェ", "ォ", "ャ", "ュ", "ョ", "ッ",
	"ー", "ア", "イ", "ウ", "エ", "オ", "カ", "キ", "ク", "ケ", "コ", "サ", "シ", "ス", "セ", "ソ",
	"タ", "チ", "ツ", "テ", "ト", "ナ", "ニ", "ヌ", "ネ", "ノ", "ハ", "ヒ", "フ", "ヘ", "ホ", "マ",
	"ミ", "ム", "メ", "モ", "ヤ", "ユ", "ヨ", "ラ", "リ", "ル", "レ", "ロ", "ワ", "ン", "゛", "゜",
	"　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　",
	"　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　", "　",
}

// singleByteTable resolves a single-byte graphic code using the table
// appropriate for the current G-register code set. Sets with no table
// (mosaics, unrecognized sets) yield no character.
func singleByteTable(set codeSet, code byte) string {
	idx := code & 0x7f
	switch set {
	case codeAlphanumeric, codePropAlphanumeric:
		return alphanumericTable[idx]
	case codeHiragana, codePropHiragana:
		return hiraganaTable[idx]
	case codeKatakana, codePropKatakana:
		return katakanaTable[idx]
	case codeJISX0201Katakana:
		return jisX0201KatakanaTable[idx]
	default:
		return ""
	}
}

// additionalSymbolsTable1 covers code points 0x7a50-0x7a74: the most common
// ARIB additional symbols (program attributes such as [HV], [SD], [新]).
var additionalSymbolsTable1 = []string{
	"[HV]", "[SD]", "[Ｐ]", "[Ｗ]", "[MV]", "[手]", "[字]", "[双]", "[デ]", "[Ｓ]",
	"[二]", "[多]", "[解]", "[SS]", "[Ｂ]", "[Ｎ]", "■", "●", "[天]", "[交]",
	"[映]", "[無]", "[料]", "[年齢制限]", "[前]", "[後]", "[再]", "[新]", "[初]", "[終]",
	"[生]", "[販]", "[声]", "[吹]", "[PPV]", "(秘)", "ほか",
}

// additionalSymbol resolves a two-byte additional-symbols code point. Codes
// in the less common tables (arrows, units, numbered circles, rare CJK
// compatibility ideographs) fall back to the ARIB-documented replacement
// character rather than a full transcription of the original's five-digit
// symbol tables.
func additionalSymbol(code uint16) string {
	if code >= 0x7a50 && code <= 0x7a74 {
		return additionalSymbolsTable1[int(code)-0x7a50]
	}
	switch {
	case code >= 0x7c21 && code <= 0x7c7b,
		code >= 0x7d21 && code <= 0x7d7b,
		code >= 0x7e21 && code <= 0x7e7d,
		code >= 0x7521 && code <= 0x757e,
		code >= 0x7621 && code <= 0x764b:
		return "・"
	default:
		return "・"
	}
}
