package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToRelative(t *testing.T) {
	root := testRoot()

	tests := []struct {
		name     string
		path     string
		rootDir  string
		expected string
	}{
		{
			name:     "path under root",
			path:     filepath.Join(root, "internal", "app.go"),
			rootDir:  root,
			expected: "internal/app.go",
		},
		{
			name:     "root itself",
			path:     root,
			rootDir:  root,
			expected: ".",
		},
		{
			name:     "already relative",
			path:     "internal/app.go",
			rootDir:  root,
			expected: "internal/app.go",
		},
		{
			name:     "empty path",
			path:     "",
			rootDir:  root,
			expected: "",
		},
		{
			name:     "empty root",
			path:     filepath.Join(root, "app.go"),
			rootDir:  "",
			expected: filepath.Join(root, "app.go"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToRelative(tt.path, tt.rootDir))
		})
	}
}

func TestToRelative_OutsideRoot(t *testing.T) {
	root := filepath.Join(testRoot(), "project")
	outside := filepath.Join(testRoot(), "elsewhere", "app.go")

	// Paths escaping the root come back unchanged (slash-normalized)
	assert.Equal(t, filepath.ToSlash(outside), ToRelative(outside, root))
}

func TestToAbsolute(t *testing.T) {
	root := testRoot()

	assert.Equal(t, filepath.Join(root, "internal", "app.go"),
		ToAbsolute("internal/app.go", root))

	abs := filepath.Join(root, "app.go")
	assert.Equal(t, abs, ToAbsolute(abs, root))

	assert.Equal(t, "", ToAbsolute("", root))
}

func TestToRelativePaths(t *testing.T) {
	root := testRoot()
	in := []string{
		filepath.Join(root, "a.go"),
		filepath.Join(root, "sub", "b.go"),
	}

	got := ToRelativePaths(in, root)
	assert.Equal(t, []string{"a.go", "sub/b.go"}, got)

	// Input is untouched
	assert.Equal(t, filepath.Join(root, "a.go"), in[0])

	assert.Empty(t, ToRelativePaths(nil, root))
}

func TestRoundTrip(t *testing.T) {
	root := testRoot()
	rel := "internal/resolver/resolver.go"

	abs := ToAbsolute(rel, root)
	assert.Equal(t, rel, ToRelative(abs, root))
}

func testRoot() string {
	if runtime.GOOS == "windows" {
		return `C:\work\project`
	}
	return "/work/project"
}
