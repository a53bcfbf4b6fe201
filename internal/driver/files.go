package driver

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/h2non/filetype"
)

// sniffLen is how much of a file is inspected to tell binary from text.
const sniffLen = 8000

// CollectFiles expands paths into a sorted, duplicate-free list of files.
// Directories are walked recursively; hidden directories below them are
// skipped.
func CollectFiles(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if _, dup := seen[clean]; dup {
			return
		}
		seen[clean] = struct{}{}
		files = append(files, clean)
	}
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && isHidden(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && !isHidden(d.Name()) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func isHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".") && name != ".."
}

// IsBinary reports whether content looks like a binary file: a known
// binary signature or a NUL byte near the start.
func IsBinary(content []byte) bool {
	head := content
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if kind, _ := filetype.Match(head); kind != filetype.Unknown {
		return true
	}
	return bytes.IndexByte(head, 0) >= 0
}

var languageByExt = map[string]string{
	".rs":   "rust",
	".js":   "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".jsx":  "javascriptreact",
	".ts":   "typescript",
	".mts":  "typescript",
	".cts":  "typescript",
	".tsx":  "typescriptreact",
	".rb":   "ruby",
	".go":   "go",
	".py":   "python",
	".pyi":  "python",
	".md":   "markdown",
	".txt":  "plaintext",
	".toml": "toml",
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
}

// LanguageID infers the LSP language identifier of path from its extension.
// Unknown extensions yield "".
func LanguageID(path string) string {
	return languageByExt[strings.ToLower(filepath.Ext(path))]
}
