package pdfsrc

import (
	"unicode"
	"unicode/utf8"
)

// isUTF16 reports whether s looks like big-endian UTF-16 with a byte-order
// mark, the encoding the PDF spec uses for "text strings" outside Latin-1.
func isUTF16(s string) bool {
	if len(s) < 2 || len(s)%2 != 0 {
		return false
	}
	return s[0] == 0xFE && s[1] == 0xFF
}

// utf16Decode decodes s (big-endian UTF-16, no byte-order mark) to UTF-8.
func utf16Decode(s string) string {
	var out []rune
	units := len(s) / 2
	codes := make([]uint16, units)
	for i := 0; i < units; i++ {
		codes[i] = uint16(s[2*i])<<8 | uint16(s[2*i+1])
	}
	for i := 0; i < len(codes); i++ {
		c := codes[i]
		if c >= 0xD800 && c <= 0xDBFF && i+1 < len(codes) {
			lo := codes[i+1]
			if lo >= 0xDC00 && lo <= 0xDFFF {
				r := 0x10000 + (rune(c)-0xD800)<<10 + (rune(lo) - 0xDC00)
				out = append(out, r)
				i++
				continue
			}
		}
		out = append(out, rune(c))
	}
	return string(out)
}

// isPDFDocEncoded reports whether s can be interpreted as PDFDocEncoding
// rather than UTF-16: every byte must have a defined mapping.
func isPDFDocEncoded(s string) bool {
	if isUTF16(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if pdfDocEncoding[s[i]] == unicode.ReplacementChar {
			return false
		}
	}
	return true
}

// pdfDocDecode decodes s from PDFDocEncoding to UTF-8.
func pdfDocDecode(s string) string {
	r := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		r[i] = pdfDocEncoding[s[i]]
	}
	return string(r)
}

// DecodeUTF8OrPreserve decodes s as UTF-8, preserving any byte that isn't
// part of a valid encoding as its own rune rather than substituting
// U+FFFD, so round-tripping through unrecognized encodings loses nothing.
func DecodeUTF8OrPreserve(s string) []rune {
	var out []rune
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size <= 1 {
			out = append(out, rune(s[0]))
			s = s[1:]
			continue
		}
		out = append(out, r)
		s = s[size:]
	}
	return out
}

// winAnsiEncoding is WinAnsiEncoding (approximately CP1252): ASCII is
// identity, C0/C1 controls and a handful of unassigned high slots fall back
// to the Unicode replacement character.
var winAnsiEncoding = buildLatinTable(map[byte]rune{
	0x80: 0x20AC, 0x82: 0x201A, 0x83: 0x0192, 0x84: 0x201E, 0x85: 0x2026,
	0x86: 0x2020, 0x87: 0x2021, 0x88: 0x02C6, 0x89: 0x2030, 0x8A: 0x0160,
	0x8B: 0x2039, 0x8C: 0x0152, 0x8E: 0x017D, 0x91: 0x2018, 0x92: 0x2019,
	0x93: 0x201C, 0x94: 0x201D, 0x95: 0x2022, 0x96: 0x2013, 0x97: 0x2014,
	0x98: 0x02DC, 0x99: 0x2122, 0x9A: 0x0161, 0x9B: 0x203A, 0x9C: 0x0153,
	0x9E: 0x017E, 0x9F: 0x0178, 0xA0: 0x00A0, 0xAD: 0x00AD,
})

// macRomanEncoding is a practical subset of MacRomanEncoding: ASCII identity
// plus the common Latin-1 accented letters in the upper range.
var macRomanEncoding = buildLatinTable(map[byte]rune{
	0x80: 0x00C4, 0x81: 0x00C5, 0x82: 0x00C7, 0x83: 0x00C9, 0x84: 0x00D1,
	0x85: 0x00D6, 0x86: 0x00DC, 0x87: 0x00E1, 0x88: 0x00E0, 0x89: 0x00E2,
	0x8A: 0x00E4, 0x8B: 0x00E3, 0x8C: 0x00E5, 0x8D: 0x00E7, 0x8E: 0x00E9,
	0x8F: 0x00E8, 0x90: 0x00EA, 0x91: 0x00EB, 0x92: 0x00ED, 0x93: 0x00EC,
	0x94: 0x00EE, 0x95: 0x00EF, 0x96: 0x00F1, 0x97: 0x00F3, 0x98: 0x00F2,
	0x99: 0x00F4, 0x9A: 0x00F6, 0x9B: 0x00F5, 0x9C: 0x00FA, 0x9D: 0x00F9,
	0x9E: 0x00FB, 0x9F: 0x00FC,
})

// pdfDocEncoding is Annex D of the PDF spec: ASCII identity, a block of
// typographic marks at 0x18-0x1F and 0x80-0x9F, and the rest unassigned.
var pdfDocEncoding = buildLatinTable(map[byte]rune{
	0x18: 0x02D8, 0x19: 0x02C7, 0x1A: 0x02C6, 0x1B: 0x02D9, 0x1C: 0x02DD,
	0x1D: 0x02DB, 0x1E: 0x02DA, 0x1F: 0x02DC,
	0x80: 0x2022, 0x81: 0x2020, 0x82: 0x2021, 0x83: 0x2026, 0x84: 0x2014,
	0x85: 0x2013, 0x86: 0x0192, 0x87: 0x2044, 0x88: 0x2039, 0x89: 0x203A,
	0x8A: 0x2212, 0x8B: 0x2030, 0x8C: 0x201E, 0x8D: 0x201C, 0x8E: 0x201D,
	0x8F: 0x2018, 0x90: 0x2019, 0x91: 0x201A, 0x92: 0x2122, 0x93: 0xFB01,
	0x94: 0xFB02, 0x95: 0x0141, 0x96: 0x0152, 0x97: 0x0160, 0x98: 0x0178,
	0x99: 0x017D, 0x9A: 0x0131, 0x9B: 0x0142, 0x9C: 0x0153, 0x9D: 0x0161,
	0x9E: 0x017E, 0xA0: 0x20AC,
})

// buildLatinTable starts from ASCII identity (0x20-0x7E) and the given
// overrides for the upper half, leaving every other byte as the Unicode
// replacement character.
func buildLatinTable(overrides map[byte]rune) [256]rune {
	var t [256]rune
	for i := range t {
		t[i] = unicode.ReplacementChar
	}
	for i := 0x20; i <= 0x7E; i++ {
		t[i] = rune(i)
	}
	for b, r := range overrides {
		t[b] = r
	}
	return t
}
