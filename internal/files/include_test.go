package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	pdfHeader = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
)

// writeTree creates files below dir and returns dir.
func writeTree(t *testing.T, dir string, files map[string][]byte) string {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, content, 0o644))
	}
	return dir
}

func names(t *testing.T, dir string, paths []string) []string {
	t.Helper()
	var rel []string
	for _, p := range paths {
		r, err := filepath.Rel(dir, p)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	return rel
}

func Test_matchesGlob(t *testing.T) {
	tcs := []struct {
		name     string
		path     string
		pattern  string
		expected bool
	}{
		{name: "simple wildcard match", path: "photo.png", pattern: "*.png", expected: true},
		{name: "simple wildcard no match", path: "photo.jpg", pattern: "*.png", expected: false},
		{name: "doublestar any subdirectory", path: "shots/2024/photo.png", pattern: "**/*.png", expected: true},
		{name: "doublestar in middle", path: "shots/a/b/raw.png", pattern: "shots/**/raw.png", expected: true},
		{name: "doublestar in middle no match", path: "other/a/raw.png", pattern: "shots/**/raw.png", expected: false},
		{name: "brace expansion", path: "clip.mov", pattern: "*.{mp4,mov}", expected: true},
		{name: "character class", path: "take1.wav", pattern: "take[0-9].wav", expected: true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			result := matchesGlob(tc.path, tc.pattern)
			assert.Equal(t, tc.expected, result,
				"matchesGlob(%q, %q) = %v, want %v", tc.path, tc.pattern, result, tc.expected)
		})
	}
}

func Test_normalizePatterns(t *testing.T) {
	tcs := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "directory with trailing slash becomes recursive",
			input:    []string{"drafts/"},
			expected: []string{"drafts/**"},
		},
		{
			name:     "removes leading ./",
			input:    []string{"./drafts/", "./notes.txt"},
			expected: []string{"drafts/**", "notes.txt"},
		},
		{
			name:     "glob patterns unchanged",
			input:    []string{"**/*.tmp", "*.bak"},
			expected: []string{"**/*.tmp", "*.bak"},
		},
		{
			name:     "empty patterns filtered",
			input:    []string{"drafts/", "", "  "},
			expected: []string{"drafts/**"},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizePatterns(tc.input))
		})
	}
}

func TestCollect_DirectoryDetectsTypes(t *testing.T) {
	dir := writeTree(t, t.TempDir(), map[string][]byte{
		"notes.txt":              []byte("hello world\n"),
		"shots/cover.png":        pngHeader,
		"docs/report.pdf":        pdfHeader,
		"node_modules/pkg/x.js":  []byte("module.exports = 1\n"),
		".git/HEAD":              []byte("ref: refs/heads/main\n"),
		"shots/nested/other.txt": []byte("more text\n"),
	})

	got, err := Collect([]string{dir}, nil)
	require.NoError(t, err)

	var paths []string
	types := make(map[string]string)
	for _, f := range got {
		paths = append(paths, f.Path)
		types[f.Name] = f.MIMEType
	}

	assert.Equal(t, []string{
		"docs/report.pdf",
		"notes.txt",
		"shots/cover.png",
		"shots/nested/other.txt",
	}, names(t, dir, paths))

	assert.Equal(t, "text/plain", types["notes.txt"], "parameters are stripped")
	assert.Equal(t, "image/png", types["cover.png"])
	assert.Equal(t, "application/pdf", types["report.pdf"])
}

func TestCollect_GlobAndExclude(t *testing.T) {
	dir := writeTree(t, t.TempDir(), map[string][]byte{
		"a.txt":        []byte("a\n"),
		"sub/b.txt":    []byte("b\n"),
		"sub/skip.txt": []byte("skip\n"),
		"sub/c.png":    pngHeader,
	})
	t.Chdir(dir)

	got, err := Collect([]string{"**/*.txt"}, []string{"skip.txt"})
	require.NoError(t, err)

	var paths []string
	for _, f := range got {
		paths = append(paths, filepath.ToSlash(f.Path))
	}
	assert.Equal(t, []string{"a.txt", "sub/b.txt"}, paths)
}

func TestCollect_Deduplicates(t *testing.T) {
	dir := writeTree(t, t.TempDir(), map[string][]byte{"a.txt": []byte("a\n")})
	file := filepath.Join(dir, "a.txt")

	got, err := Collect([]string{file, dir, filepath.Join(dir, "*.txt")}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.txt", got[0].Name)
	assert.Equal(t, int64(2), got[0].Size)
}

func TestCollect_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Collect([]string{filepath.Join(dir, "missing.txt")}, nil)
	assert.ErrorContains(t, err, "failed to read")

	_, err = Collect([]string{filepath.Join(dir, "*.nothing")}, nil)
	assert.ErrorIs(t, err, ErrNoMatches)

	_, err = Collect(nil, nil)
	assert.ErrorIs(t, err, ErrNoMatches)
}
