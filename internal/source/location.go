package source

import "fmt"

type Location struct {
	File string

	// Byte offset into the buffer
	Offset int

	// 0-based, Column counts runes
	Line, Column int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line+1, l.Column+1)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line+1, l.Column+1)
}
