package lexer

import "unicode"

// letters is the fixed set of characters that can form a word: ASCII letters,
// the Latin-1 Supplement letters and Latin Extended-A. It covers the accented
// letters used by the natural languages shipped as hunspell dictionaries for
// western and central Europe. Other scripts are treated as delimiters.
var letters = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 'A', Hi: 'Z', Stride: 1},
		{Lo: 'a', Hi: 'z', Stride: 1},
		{Lo: 0x00C0, Hi: 0x00D6, Stride: 1}, // À..Ö
		{Lo: 0x00D8, Hi: 0x00F6, Stride: 1}, // Ø..ö
		{Lo: 0x00F8, Hi: 0x017F, Stride: 1}, // ø..ÿ, Latin Extended-A
	},
	LatinOffset: 4,
}

// IsLetter reports whether r can be part of a word.
func IsLetter(r rune) bool {
	if r < 0x80 {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}
	return unicode.Is(letters, r)
}

// Alphabet returns every lowercase letter accepted by the lexer, ASCII first.
func Alphabet() []rune {
	out := make([]rune, 0, 128)
	for _, rng := range letters.R16 {
		for r := rune(rng.Lo); r <= rune(rng.Hi); r += rune(rng.Stride) {
			if unicode.IsLower(r) {
				out = append(out, r)
			}
		}
	}
	return out
}

func isApostrophe(r rune) bool {
	return r == '\''
}
