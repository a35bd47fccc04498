package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10 // 64 KiB

var builtinSeeds = []string{
	"",
	" ",
	"a",
	"hello world",
	"\t\n\v\f\r ",
	"tab\tseparated\tvalues\n",
	"\u00a0nbsp\u00a0",
	"\u3000ideographic\u3000space",
	"zero\u200bwidth",
	"next\u0085line\u2028sep",
	"\U0001F600 \U0001F680",
	"\xff",
	"\xe2\x82",
	"trail\xc3",
}

func addCorpusSeeds(f *testing.F) {
	for _, seed := range builtinSeeds {
		f.Add([]byte(seed))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".txt" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
