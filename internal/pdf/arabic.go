package pdf

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/bidi"
)

// Presentation forms indexed by position: isolated, final, initial, medial.
// Right-joining letters only have the first two.
var arabicForms = map[rune][]rune{
	0x0621: {0xFE80},
	0x0622: {0xFE81, 0xFE82},
	0x0623: {0xFE83, 0xFE84},
	0x0624: {0xFE85, 0xFE86},
	0x0625: {0xFE87, 0xFE88},
	0x0626: {0xFE89, 0xFE8A, 0xFE8B, 0xFE8C},
	0x0627: {0xFE8D, 0xFE8E},
	0x0628: {0xFE8F, 0xFE90, 0xFE91, 0xFE92},
	0x0629: {0xFE93, 0xFE94},
	0x062A: {0xFE95, 0xFE96, 0xFE97, 0xFE98},
	0x062B: {0xFE99, 0xFE9A, 0xFE9B, 0xFE9C},
	0x062C: {0xFE9D, 0xFE9E, 0xFE9F, 0xFEA0},
	0x062D: {0xFEA1, 0xFEA2, 0xFEA3, 0xFEA4},
	0x062E: {0xFEA5, 0xFEA6, 0xFEA7, 0xFEA8},
	0x062F: {0xFEA9, 0xFEAA},
	0x0630: {0xFEAB, 0xFEAC},
	0x0631: {0xFEAD, 0xFEAE},
	0x0632: {0xFEAF, 0xFEB0},
	0x0633: {0xFEB1, 0xFEB2, 0xFEB3, 0xFEB4},
	0x0634: {0xFEB5, 0xFEB6, 0xFEB7, 0xFEB8},
	0x0635: {0xFEB9, 0xFEBA, 0xFEBB, 0xFEBC},
	0x0636: {0xFEBD, 0xFEBE, 0xFEBF, 0xFEC0},
	0x0637: {0xFEC1, 0xFEC2, 0xFEC3, 0xFEC4},
	0x0638: {0xFEC5, 0xFEC6, 0xFEC7, 0xFEC8},
	0x0639: {0xFEC9, 0xFECA, 0xFECB, 0xFECC},
	0x063A: {0xFECD, 0xFECE, 0xFECF, 0xFED0},
	0x0640: {0x0640, 0x0640, 0x0640, 0x0640},
	0x0641: {0xFED1, 0xFED2, 0xFED3, 0xFED4},
	0x0642: {0xFED5, 0xFED6, 0xFED7, 0xFED8},
	0x0643: {0xFED9, 0xFEDA, 0xFEDB, 0xFEDC},
	0x0644: {0xFEDD, 0xFEDE, 0xFEDF, 0xFEE0},
	0x0645: {0xFEE1, 0xFEE2, 0xFEE3, 0xFEE4},
	0x0646: {0xFEE5, 0xFEE6, 0xFEE7, 0xFEE8},
	0x0647: {0xFEE9, 0xFEEA, 0xFEEB, 0xFEEC},
	0x0648: {0xFEED, 0xFEEE},
	0x0649: {0xFEEF, 0xFEF0},
	0x064A: {0xFEF1, 0xFEF2, 0xFEF3, 0xFEF4},
	0x067E: {0xFB56, 0xFB57, 0xFB58, 0xFB59},
	0x0686: {0xFB7A, 0xFB7B, 0xFB7C, 0xFB7D},
	0x0698: {0xFB8A, 0xFB8B},
	0x06A9: {0xFB8E, 0xFB8F, 0xFB90, 0xFB91},
	0x06AF: {0xFB92, 0xFB93, 0xFB94, 0xFB95},
	0x06CC: {0xFBFC, 0xFBFD, 0xFBFE, 0xFBFF},
}

// lam followed by one of these alefs becomes a single ligature
// (isolated, final).
var lamAlef = map[rune][2]rune{
	0x0622: {0xFEF5, 0xFEF6},
	0x0623: {0xFEF7, 0xFEF8},
	0x0625: {0xFEF9, 0xFEFA},
	0x0627: {0xFEFB, 0xFEFC},
}

const (
	formIsolated = iota
	formFinal
	formInitial
	formMedial
)

const lam = 0x0644

var mirrored = map[rune]rune{
	'(': ')', ')': '(',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'<': '>', '>': '<',
	'«': '»', '»': '«',
}

// bidi controls and combining marks have no glyphs in the fonts we embed.
var stripper = runes.Remove(runes.Predicate(func(r rune) bool {
	if unicode.Is(unicode.Mn, r) {
		return true
	}
	switch r {
	case 0x061C, 0x200E, 0x200F, 0x202A, 0x202B, 0x202C, 0x202D, 0x202E,
		0x2066, 0x2067, 0x2068, 0x2069:
		return true
	}
	return false
}))

func stripMarks(s string) string {
	out, _, err := transform.String(stripper, s)
	if err != nil {
		return s
	}
	return out
}

func isRTLRune(r rune) bool {
	p, _ := bidi.LookupRune(r)
	c := p.Class()
	return c == bidi.R || c == bidi.AL
}

func isLTRRune(r rune) bool {
	p, _ := bidi.LookupRune(r)
	switch p.Class() {
	case bidi.L, bidi.EN, bidi.AN:
		return true
	}
	return false
}

// IsRTL reports whether s contains any right-to-left letter.
func IsRTL(s string) bool {
	for _, r := range s {
		if isRTLRune(r) {
			return true
		}
	}
	return false
}

// isArabicGlyph reports whether r must be drawn with the Arabic font.
func isArabicGlyph(r rune) bool {
	return (r >= 0x0600 && r <= 0x06FF) || (r >= 0xFB50 && r <= 0xFDFF) || (r >= 0xFE70 && r <= 0xFEFF)
}

func joinsBoth(r rune) bool {
	return len(arabicForms[r]) == 4
}

func joins(r rune) bool {
	_, ok := arabicForms[r]
	return ok && r != 0x0621
}

// Shape replaces Arabic letters with their contextual presentation forms and
// merges lam-alef pairs. The result stays in logical order.
func Shape(s string) string {
	in := []rune(stripMarks(s))
	out := make([]rune, 0, len(in))

	for i := 0; i < len(in); i++ {
		r := in[i]
		forms, ok := arabicForms[r]
		if !ok {
			out = append(out, r)
			continue
		}

		prevJoins := i > 0 && joinsBoth(in[i-1])

		if r == lam && i+1 < len(in) {
			if lig, ok := lamAlef[in[i+1]]; ok {
				if prevJoins {
					out = append(out, lig[1])
				} else {
					out = append(out, lig[0])
				}
				i++
				continue
			}
		}

		nextJoins := len(forms) == 4 && i+1 < len(in) && joins(in[i+1])

		form := formIsolated
		switch {
		case prevJoins && nextJoins:
			form = formMedial
		case prevJoins:
			form = formFinal
		case nextJoins:
			form = formInitial
		}
		if form >= len(forms) {
			form = formIsolated
			if prevJoins {
				form = formFinal
			}
		}
		out = append(out, forms[form])
	}
	return string(out)
}

// Visual turns a logical right-to-left line into drawing order: the line is
// reversed while left-to-right runs (Latin words, numbers) keep their own
// order. Brackets in the right-to-left part are mirrored. Lines without RTL
// letters are returned unchanged.
func Visual(s string) string {
	if !IsRTL(s) {
		return s
	}

	in := []rune(s)
	ltr := make([]bool, len(in))
	for i, r := range in {
		switch {
		case isLTRRune(r):
			ltr[i] = true
		case isRTLRune(r):
			ltr[i] = false
		default:
			ltr[i] = neutralIsLTR(in, i)
		}
	}

	out := make([]rune, len(in))
	isLTR := make([]bool, len(in))
	for i := range in {
		j := len(in) - 1 - i
		out[j] = in[i]
		isLTR[j] = ltr[i]
	}

	for i := 0; i < len(out); {
		if !isLTR[i] {
			if m, ok := mirrored[out[i]]; ok {
				out[i] = m
			}
			i++
			continue
		}
		j := i
		for j < len(out) && isLTR[j] {
			j++
		}
		reverse(out[i:j])
		i = j
	}
	return string(out)
}

// a neutral between two left-to-right characters joins their run; any other
// neutral takes the paragraph direction.
func neutralIsLTR(in []rune, i int) bool {
	before, after := false, false
	for k := i - 1; k >= 0; k-- {
		if isLTRRune(in[k]) {
			before = true
			break
		}
		if isRTLRune(in[k]) {
			break
		}
	}
	for k := i + 1; k < len(in); k++ {
		if isLTRRune(in[k]) {
			after = true
			break
		}
		if isRTLRune(in[k]) {
			break
		}
	}
	return before && after
}

func reverse(rs []rune) {
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
}
