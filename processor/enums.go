package processor

import (
	"strings"
)

//go:generate stringer -linecomment -output enums_string.go -type=ContentKind

// ContentKind specifies what kind of site page is being processed.
type ContentKind int

// Supported page kinds
const (
	KindIndex              ContentKind = iota // index
	KindLesson                                // lesson
	KindGlossary                              // glossary
	UnsupportedContentKind                    //
)

// ParseContentKindString converts string to enum value. Case insensitive.
func ParseContentKindString(kind string) ContentKind {

	for i := KindIndex; i < UnsupportedContentKind; i++ {
		if strings.EqualFold(i.String(), kind) {
			return i
		}
	}
	return UnsupportedContentKind
}
