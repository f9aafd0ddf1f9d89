package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dropzone/dropzone/internal/upload"
	"github.com/gabriel-vasile/mimetype"
)

// ErrNoMatches is returned when no argument resolved to a file.
var ErrNoMatches = errors.New("no files matched")

// devFolders are skipped when walking a directory argument.
var devFolders = []string{"venv", "virtualenv", ".venv", ".git", "node_modules", "__pycache__"}

// Collect resolves command line arguments to files ready for upload. An
// argument is a file, a directory (every file below it) or a glob pattern
// with ** support. Files matching an exclude pattern are dropped. The
// result is sorted by path with duplicates removed.
func Collect(args, exclude []string) ([]upload.File, error) {
	excludePatterns := normalizePatterns(exclude)
	seen := make(map[string]bool)
	var paths []string

	add := func(path string) {
		path = filepath.Clean(path)
		if seen[path] || isExcluded(path, excludePatterns) {
			return
		}
		seen[path] = true
		paths = append(paths, path)
	}

	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}

		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			if err := walkDir(arg, add); err != nil {
				return nil, err
			}
		case err == nil:
			add(arg)
		case errors.Is(err, fs.ErrNotExist) && isPattern(arg):
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
			}
			for _, m := range matches {
				add(m)
			}
		default:
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
	}

	if len(paths) == 0 {
		return nil, ErrNoMatches
	}

	slices.Sort(paths)
	result := make([]upload.File, 0, len(paths))
	for _, path := range paths {
		f, err := Detect(path)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, nil
}

// Detect stats path and sniffs its MIME type from the content.
func Detect(path string) (upload.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return upload.File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return upload.File{}, fmt.Errorf("failed to detect type of %s: %w", path, err)
	}

	return upload.File{
		Path:     path,
		Name:     filepath.Base(path),
		Size:     info.Size(),
		MIMEType: baseType(mtype.String()),
	}, nil
}

// baseType strips parameters such as "; charset=utf-8".
func baseType(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.TrimSpace(base)
}

func walkDir(root string, add func(string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && slices.Contains(devFolders, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			add(path)
		}
		return nil
	})
}

func isPattern(arg string) bool {
	return strings.ContainsAny(arg, "*?[{")
}

func isExcluded(path string, patterns []string) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if matchesGlob(normalized, pattern) || matchesGlob(filepath.Base(path), pattern) {
			return true
		}
	}
	return false
}

// normalizePatterns cleans up the patterns for consistent matching
func normalizePatterns(patterns []string) []string {
	var normalized []string
	for _, pattern := range patterns {
		p := strings.TrimSpace(pattern)
		if p == "" {
			continue
		}

		p = filepath.ToSlash(p)
		p = strings.TrimPrefix(p, "./")

		// "assets/" excludes everything below assets
		if strings.HasSuffix(p, "/") {
			p += "**"
		}

		normalized = append(normalized, p)
	}
	return normalized
}

// matchesGlob checks if path matches a glob-style pattern (e.g., **/*.png)
func matchesGlob(path, pattern string) bool {
	matched, err := doublestar.Match(pattern, path)
	if err != nil {
		return false
	}
	return matched
}
