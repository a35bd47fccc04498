package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags records how the content was obtained and normalized.
	FileFlags uint8
)

// NoFileID marks spans that do not point into any file, such as the span of a
// load failure.
const NoFileID FileID = 1<<32 - 1

const (
	// FileVirtual marks content added from memory (stdin, tests).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	FileNormalizedNFC
)

// File captures metadata and content for a single input text.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a human-readable position. Col counts bytes, like the offsets.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// LoadOptions controls the normalization Load applies before the content is
// stored. Offsets reported by the tokenizer refer to the stored content.
type LoadOptions struct {
	StripBOM      bool
	NormalizeCRLF bool
	NFC           bool
}

// DefaultLoadOptions strips a leading BOM and leaves everything else as read.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{StripBOM: true}
}
