package fuzztests

import (
	"testing"

	"hilite/internal/languages"
	"hilite/internal/lexer"
	"hilite/internal/source"
	"hilite/internal/testkit"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func FuzzTokenize(f *testing.F) {
	addCorpusSeeds(f)
	set := languages.Default()
	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = append([]byte(nil), input[:maxFuzzInput]...)
		} else {
			input = append([]byte(nil), input...)
		}

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.txt", input))

		for _, lang := range set.Names() {
			g, _ := set.Lookup(lang)
			s, err := lexer.TokenizeFile(file, g, lexer.Options{})
			if err != nil {
				t.Fatalf("%s: %v", lang, err)
			}
			if err := testkit.CheckFileStream(s, file); err != nil {
				t.Fatalf("%s: %v", lang, err)
			}
		}
	})
}
