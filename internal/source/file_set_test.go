package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("notes.txt", []byte("hello world"), 0)
	id2 := fs.Add("notes.txt", []byte("hello universe"), 0)
	if id1 != 0 || id2 != 1 {
		t.Fatalf("expected ids 0 and 1, got %d and %d", id1, id2)
	}

	latest, ok := fs.GetByPath("notes.txt")
	if !ok {
		t.Fatalf("expected notes.txt to be registered")
	}
	if latest.ID != id2 {
		t.Fatalf("expected latest id %d, got %d", id2, latest.ID)
	}
	if got := string(fs.Get(id1).Content); got != "hello world" {
		t.Fatalf("old version must stay reachable, got %q", got)
	}
	if fs.Len() != 2 {
		t.Fatalf("expected 2 files, got %d", fs.Len())
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("a.txt", []byte("a\nb\n")))

	want := []uint32{1, 3}
	if len(file.LineIdx) != len(want) {
		t.Fatalf("expected LineIdx %v, got %v", want, file.LineIdx)
	}
	for i := range want {
		if file.LineIdx[i] != want[i] {
			t.Fatalf("LineIdx[%d]: expected %d, got %d", i, want[i], file.LineIdx[i])
		}
	}
	if file.Flags&FileVirtual == 0 {
		t.Fatalf("expected FileVirtual flag")
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("r.txt", []byte("ab\ncd\n\nef"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{2, LineCol{Line: 1, Col: 3}}, // the newline itself
		{3, LineCol{Line: 2, Col: 1}},
		{6, LineCol{Line: 3, Col: 1}},
		{7, LineCol{Line: 4, Col: 1}},
		{9, LineCol{Line: 4, Col: 3}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: expected %+v, got %+v", tt.off, tt.want, start)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("l.txt", []byte("first\nsecond\n\nlast")))

	want := map[uint32]string{0: "", 1: "first", 2: "second", 3: "", 4: "last", 5: ""}
	for n, line := range want {
		if got := file.GetLine(n); got != line {
			t.Errorf("line %d: expected %q, got %q", n, line, got)
		}
	}
}

func TestLoadNormalization(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	raw := "\xEF\xBB\xBFone\r\ntwo cafe\u0301"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name  string
		opts  LoadOptions
		want  string
		flags FileFlags
	}{
		{"as read", LoadOptions{}, raw, 0},
		{"default strips bom", DefaultLoadOptions(), strings.TrimPrefix(raw, "\xEF\xBB\xBF"), FileHadBOM},
		{"crlf", LoadOptions{NormalizeCRLF: true}, "\xEF\xBB\xBFone\ntwo cafe\u0301", FileNormalizedCRLF},
		{"nfc", LoadOptions{StripBOM: true, NFC: true}, "one\r\ntwo caf\u00e9", FileHadBOM | FileNormalizedNFC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := NewFileSet()
			id, err := fs.Load(path, tt.opts)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			file := fs.Get(id)
			if string(file.Content) != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, file.Content)
			}
			if file.Flags != tt.flags {
				t.Fatalf("expected flags %b, got %b", tt.flags, file.Flags)
			}
		})
	}
}

func TestLoadReaderMarksVirtual(t *testing.T) {
	fs := NewFileSet()
	id, err := fs.LoadReader("<stdin>", strings.NewReader("x y"), DefaultLoadOptions())
	if err != nil {
		t.Fatalf("load reader: %v", err)
	}
	file := fs.Get(id)
	if file.Flags&FileVirtual == 0 || string(file.Content) != "x y" {
		t.Fatalf("unexpected file %+v", file)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "missing.txt"), DefaultLoadOptions()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
