package chars

import "fmt"

// Kind tags a Char as a real rune or the end of the stream.
type Kind uint8

const (
	Rune Kind = iota
	End
)

func (k Kind) String() string {
	switch k {
	case Rune:
		return "rune"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Char is one positioned element of the annotated stream.
type Char struct {
	Kind   Kind
	Rune   rune   // zero for End
	Size   uint32 // encoded width in bytes; zero for End
	Byte   uint32 // bytes before this element
	Offset uint32 // runes before this element
}

// IsEnd reports whether c marks the end of the stream.
func (c Char) IsEnd() bool { return c.Kind == End }

func (c Char) String() string {
	if c.IsEnd() {
		return fmt.Sprintf("<end>@%d/%d", c.Byte, c.Offset)
	}
	return fmt.Sprintf("%q@%d/%d", c.Rune, c.Byte, c.Offset)
}
