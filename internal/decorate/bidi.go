package decorate

import (
	"golang.org/x/text/unicode/bidi"
)

// Direction represents text direction
type Direction int

const (
	// LeftToRight is the default direction
	LeftToRight Direction = iota
	// RightToLeft applies when the first strong character is RTL
	RightToLeft
)

// textDirection returns the base direction of a header/footer string from
// its first strong directional character.
func textDirection(text string) Direction {
	for i := 0; i < len(text); {
		props, size := bidi.LookupString(text[i:])
		if size == 0 {
			break
		}
		switch props.Class() {
		case bidi.L:
			return LeftToRight
		case bidi.R, bidi.AL:
			return RightToLeft
		}
		i += size
	}
	return LeftToRight
}
