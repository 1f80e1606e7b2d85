package graph

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LongestQualifiedPrefix returns the leading run of dot-separated segments
// that each start with an upper-case letter, joined by ".". It separates a
// type-qualified call target ("Foo.Bar.baz") from its trailing member
// ("baz"). A name whose first segment is lower-case yields "".
func LongestQualifiedPrefix(name string) string {
	segments := strings.Split(name, ".")
	n := 0
	for _, seg := range segments {
		if !startsUpper(seg) {
			break
		}
		n++
	}
	return strings.Join(segments[:n], ".")
}

// typeRefSeparator matches everything that cannot be part of a (possibly
// dotted) type name: anything but letters, digits, underscore and dot.
// Letters and digits are Unicode-aware since Swift identifiers may be.
var typeRefSeparator = regexp.MustCompile(`[^\p{L}\p{N}_.]+`)

// TypeReferences extracts the type names mentioned in raw type text, e.g.
// "Dictionary<String,Foo.Bar>" -> [Dictionary String Foo.Bar]. Only tokens
// starting with an upper-case letter are kept, which drops keywords,
// generic delimiters and lower-case identifiers.
func TypeReferences(text string) []string {
	var refs []string
	for _, tok := range typeRefSeparator.Split(text, -1) {
		if startsUpper(tok) {
			refs = append(refs, tok)
		}
	}
	return refs
}

// startsUpper reports whether s begins with an upper-case letter.
func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}
