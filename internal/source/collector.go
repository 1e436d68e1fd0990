// Package source discovers the source files a modernization run operates on.
package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	".idea":        true,
	".vscode":      true,
	"target":       true,
	"build":        true,
	"out":          true,
	"node_modules": true,
}

// Unit is a single source file selected for modernization.
type Unit struct {
	// Path is the absolute path on disk.
	Path string
	// RelPath is the path relative to the collection root, slash-separated.
	RelPath string
	// Content is the file's full contents.
	Content string
	// Size is the content length in bytes.
	Size int64
}

// Summary describes a completed collection pass.
type Summary struct {
	Root       string
	Units      int
	TotalBytes int64
	Skipped    int
}

// Collector walks a directory tree and selects source files by extension,
// minus any excluded patterns.
type Collector struct {
	ext      string
	excludes []*regexp.Regexp
}

// NewCollector creates a collector for files with the given extension.
// Patterns are regular expressions matched against slash-separated
// relative paths.
func NewCollector(ext string, excludePatterns []string) (*Collector, error) {
	if ext == "" {
		return nil, fmt.Errorf("source extension must not be empty")
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	excludes := make([]*regexp.Regexp, 0, len(excludePatterns))
	for _, pattern := range excludePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		excludes = append(excludes, re)
	}

	return &Collector{ext: ext, excludes: excludes}, nil
}

// Collect walks root and returns the matching units sorted by relative
// path, along with a summary of what was found.
func (c *Collector) Collect(root string) ([]Unit, Summary, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("failed to resolve root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("failed to stat %s: %w", root, err)
	}

	// A single file is a valid collection target.
	if !info.IsDir() {
		unit, err := c.loadUnit(absRoot, filepath.Base(absRoot))
		if err != nil {
			return nil, Summary{}, err
		}
		return []Unit{unit}, Summary{Root: absRoot, Units: 1, TotalBytes: unit.Size}, nil
	}

	var units []Unit
	summary := Summary{Root: absRoot}

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != absRoot && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != c.ext {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if c.excluded(rel) {
			summary.Skipped++
			return nil
		}

		unit, err := c.loadUnit(path, rel)
		if err != nil {
			return err
		}
		units = append(units, unit)
		return nil
	})
	if walkErr != nil {
		return nil, Summary{}, fmt.Errorf("failed to walk %s: %w", root, walkErr)
	}

	sort.Slice(units, func(i, j int) bool { return units[i].RelPath < units[j].RelPath })

	summary.Units = len(units)
	for _, u := range units {
		summary.TotalBytes += u.Size
	}
	return units, summary, nil
}

func (c *Collector) excluded(rel string) bool {
	for _, re := range c.excludes {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

func (c *Collector) loadUnit(path, rel string) (Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Unit{}, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return Unit{
		Path:    path,
		RelPath: rel,
		Content: string(data),
		Size:    int64(len(data)),
	}, nil
}
