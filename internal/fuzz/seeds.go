package fuzztests

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
)

var seedExts = map[string]bool{".go": true, ".json": true, ".toml": true, ".txt": true}

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addReadmeSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err == nil {
		// проходим по дереву testdata, добавляем файлы знакомых языков
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil || d.IsDir() || !seedExts[filepath.Ext(path)] {
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
	// добавляем хотя бы несколько минимальных примеров на случай пустого testdata
	f.Add([]byte{})
	f.Add([]byte("func main() { fmt.Println(\"hi\") }\n"))
	f.Add([]byte("type R interface { Read(p []byte) (n int, err error) }"))
	f.Add([]byte("/* unterminated `raw\n\"esc\\\"\""))
}

// addReadmeSeeds adds fenced code blocks of the README.
func addReadmeSeeds(f *testing.F) {
	path := filepath.Join("..", "..", "README.md")
	// #nosec G304 -- path is a fixed repository location
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var block [][]byte
	inBlock := false
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if !strings.HasPrefix(strings.TrimSpace(string(line)), "```") {
			if inBlock {
				// сохраняем оригинальные строки, включая отступы
				block = append(block, line)
			}
			continue
		}
		if inBlock {
			if snippet := clampSeed(bytes.Join(block, []byte{'\n'})); len(snippet) > 0 {
				f.Add(snippet)
			}
		}
		inBlock = !inBlock
		block = block[:0]
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
