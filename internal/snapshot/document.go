package snapshot

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/lcr/internal/types"
)

// Document is one file inside a project snapshot: identity, path, text and
// owning module. Documents are immutable; an edit replaces the document with a
// new value inside a new snapshot.
type Document struct {
	ID     types.DocumentID
	Module types.ModuleID
	Path   string // absolute
	Text   string
	// Hash is the xxhash of Text, used to skip byte-equal documents when
	// diffing snapshots.
	Hash uint64
}

// NewDocument builds a document and computes its content hash.
func NewDocument(id types.DocumentID, module types.ModuleID, path, text string) Document {
	return Document{
		ID:     id,
		Module: module,
		Path:   path,
		Text:   text,
		Hash:   xxhash.Sum64String(text),
	}
}

// WithText returns a copy of the document carrying new text.
func (d Document) WithText(text string) Document {
	d.Text = text
	d.Hash = xxhash.Sum64String(text)
	return d
}

// WithPath returns a copy of the document at a new path.
func (d Document) WithPath(path string) Document {
	d.Path = path
	return d
}

// Lines splits the document text into lines. Line terminators are stripped;
// a trailing newline does not produce an empty final line.
func (d Document) Lines() []string {
	if d.Text == "" {
		return nil
	}
	lines := strings.Split(d.Text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, ln := range lines {
		lines[i] = strings.TrimSuffix(ln, "\r")
	}
	return lines
}

// LineCount returns the number of lines in the document.
func (d Document) LineCount() int {
	return len(d.Lines())
}

// lineStarts returns the byte offset of the start of each line (0-based line
// index) within Text.
func (d Document) lineStarts() []int {
	starts := []int{0}
	for i := 0; i < len(d.Text); i++ {
		if d.Text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// OffsetOf converts a 1-based line/column to a byte offset into Text.
// Returns -1 when the position is outside the document.
func (d Document) OffsetOf(line, column int) int {
	if line < 1 || column < 1 {
		return -1
	}
	starts := d.lineStarts()
	if line > len(starts) {
		return -1
	}
	start := starts[line-1]
	end := len(d.Text)
	if line < len(starts) {
		end = starts[line] // includes the newline; column may point past text
	}
	off := start + column - 1
	if off > end {
		return -1
	}
	return off
}

// Line returns the 1-based line content without its terminator.
func (d Document) Line(n int) (string, bool) {
	lines := d.Lines()
	if n < 1 || n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}
