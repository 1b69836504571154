package measure

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

// Counts are the size and length figures derived from one upload.
type Counts struct {
	ByteSize  int
	CharCount int
	WordCount int
}

// Compute derives Counts from the raw upload and its extracted text.
func Compute(raw []byte, text string) Counts {
	return Counts{
		ByteSize:  len(raw),
		CharCount: CharCount(text),
		WordCount: WordCount(text),
	}
}

// CharCount returns the length of text in UTF-16 code units. Characters outside
// the Basic Multilingual Plane count twice; invalid bytes count once each.
func CharCount(text string) int {
	n := 0
	for _, r := range text {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}

// WordCount returns the number of maximal runs of non-whitespace characters.
func WordCount(text string) int {
	return len(strings.FieldsFunc(text, isSpace))
}

// isSpace matches the ECMAScript \s class: U+FEFF separates words and U+0085
// does not, unlike unicode.IsSpace.
func isSpace(r rune) bool {
	switch r {
	case '\uFEFF':
		return true
	case '\u0085':
		return false
	}
	return unicode.IsSpace(r)
}
