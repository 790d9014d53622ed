package pdfsrc

// nameToRune maps PDF glyph names (as found in a font's /Differences array)
// to Unicode code points. This is a practical subset of the Adobe Glyph
// List covering the glyphs that actually appear in /Differences arrays for
// Latin-text fonts; anything else decodes via the font's base encoding.
var nameToRune = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=', "greater": '>',
	"question": '?', "at": '@',
	"bracketleft": '[', "backslash": '\\', "bracketright": ']',
	"asciicircum": '^', "underscore": '_', "grave": '`',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"quoteleft": 0x2018, "quoteright": 0x2019, "quotedblleft": 0x201C,
	"quotedblright": 0x201D, "bullet": 0x2022, "endash": 0x2013,
	"emdash": 0x2014, "ellipsis": 0x2026, "trademark": 0x2122,
	"fi": 0xFB01, "fl": 0xFB02,
	"Adieresis": 0x00C4, "adieresis": 0x00E4, "Odieresis": 0x00D6,
	"odieresis": 0x00F6, "Udieresis": 0x00DC, "udieresis": 0x00FC,
	"eacute": 0x00E9, "Eacute": 0x00C9, "agrave": 0x00E0, "egrave": 0x00E8,
	"ccedilla": 0x00E7, "Ccedilla": 0x00C7, "ntilde": 0x00F1, "Ntilde": 0x00D1,
	"copyright": 0x00A9, "registered": 0x00AE, "degree": 0x00B0,
}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		nameToRune[string(c)] = c
	}
	for c := 'a'; c <= 'z'; c++ {
		nameToRune[string(c)] = c
	}
}
