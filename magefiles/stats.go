//go:build mage

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// sourceRoots are the trees Stats measures.
var sourceRoots = []string{"cmd", "internal", "pkg"}

// pkgStats is what Stats reports for one Go package directory.
type pkgStats struct {
	Package string `json:"package"`
	Prod    int    `json:"prod_lines"`
	Test    int    `json:"test_lines"`
	Tests   int    `json:"tests"`
	Golden  int    `json:"golden_files"`
}

// Stats prints one JSON line per package with production and test line
// counts, the number of test functions and the number of golden files,
// then a totals line.
func Stats() error {
	byDir := map[string]*pkgStats{}
	get := func(dir string) *pkgStats {
		if s, ok := byDir[dir]; ok {
			return s
		}
		s := &pkgStats{Package: filepath.ToSlash(dir)}
		byDir[dir] = s
		return s
	}

	for _, root := range sourceRoots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			dir := filepath.Dir(path)
			switch {
			case strings.HasSuffix(path, ".golden"):
				// testdata belongs to the package above it.
				get(filepath.Dir(dir)).Golden++
			case strings.HasSuffix(path, "_test.go"):
				lines, tests, err := scanGoFile(path)
				if err != nil {
					return err
				}
				s := get(dir)
				s.Test += lines
				s.Tests += tests
			case strings.HasSuffix(path, ".go"):
				lines, _, err := scanGoFile(path)
				if err != nil {
					return err
				}
				get(dir).Prod += lines
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	total := pkgStats{Package: "total"}
	enc := json.NewEncoder(os.Stdout)
	for _, dir := range dirs {
		s := byDir[dir]
		if s.Prod+s.Test == 0 {
			continue
		}
		total.Prod += s.Prod
		total.Test += s.Test
		total.Tests += s.Tests
		total.Golden += s.Golden
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	if err := enc.Encode(total); err != nil {
		return fmt.Errorf("writing totals: %w", err)
	}
	return nil
}

// scanGoFile counts the non-blank lines of a Go file and its top-level
// Test functions.
func scanGoFile(path string) (lines, tests int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines++
		if strings.HasPrefix(line, "func Test") {
			tests++
		}
	}
	return lines, tests, sc.Err()
}
