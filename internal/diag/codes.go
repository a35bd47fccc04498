package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// lexical
	LexInfo           Code = 1000
	LexInvalidUTF8    Code = 1001
	LexReadError      Code = 1002
	LexOffsetOverflow Code = 1003

	// input / io
	IOInfo           Code = 4000
	IOLoadFileError  Code = 4001
	InputBOMStripped Code = 4002
	InputNormalized  Code = 4003
)

var codeDescription = map[Code]string{
	UnknownCode:       "Unknown error",
	LexInfo:           "Lexical information",
	LexInvalidUTF8:    "Invalid UTF-8 sequence",
	LexReadError:      "Input read failed",
	LexOffsetOverflow: "Input too large for offsets",
	IOInfo:            "Input information",
	IOLoadFileError:   "I/O load file error",
	InputBOMStripped:  "Byte order mark removed",
	InputNormalized:   "Input text normalized",
}

// ID returns the stable short identifier, e.g. "LEX1001".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	default:
		return fmt.Sprintf("E%04d", ic)
	}
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
