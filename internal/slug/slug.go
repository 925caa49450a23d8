// Package slug turns skill names and post titles into anchor-safe
// identifiers, so /skills?focus=vuejs and #skill-vuejs both find "Vue.js".
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// symbols spells out the characters that tell tech names apart, so "C++"
// and "C#" don't both collapse to "c".
var symbols = strings.NewReplacer(
	"++", " plus plus ",
	"#", " sharp ",
	"&", " and ",
	"+", " plus ",
)

// stripMarks removes combining accents after NFD decomposition.
var stripMarks = runes.Remove(runes.In(unicode.Mn))

// Generate returns the lowercase, hyphen-separated slug of s. Dots and
// apostrophes join the surrounding letters; other punctuation separates
// words. Accented letters are folded to their base letter.
//
//	Generate("Vue.js")         == "vuejs"
//	Generate("C++ & Rust")     == "c-plus-plus-and-rust"
//	Generate("Café Économie")  == "cafe-economie"
func Generate(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, stripMarks, norm.NFC), s)
	if err != nil {
		folded = s
	}
	folded = symbols.Replace(strings.ToLower(folded))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range folded {
		switch {
		case r == '.' || r == '\'' || r == '’':
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}

// Match reports whether query names the same thing as name, comparing
// slugs. An empty query never matches.
func Match(name, query string) bool {
	q := Generate(query)
	return q != "" && Generate(name) == q
}
