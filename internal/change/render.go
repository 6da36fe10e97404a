package change

import (
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/standardbeagle/lcr/internal/snapshot"
	"github.com/standardbeagle/lcr/pkg/pathutil"
)

// renderPending converts one document-level change into its preview
// description: changed-line excerpts plus a unified diff. Rename edits keep
// line counts stable, so old and new lines align pairwise; created and
// deleted documents render as whole-file hunks.
func renderPending(root string, before, after snapshot.Document, created, deleted bool) (string, string, string) {
	rel := pathutil.ToRelative(after.Path, root)
	if deleted {
		rel = pathutil.ToRelative(before.Path, root)
	}

	var hunks []*diff.Hunk
	var beforeExcerpt, afterExcerpt []string

	switch {
	case created:
		lines := after.Lines()
		hunks = append(hunks, wholeFileHunk(lines, true))
		afterExcerpt = lines
	case deleted:
		lines := before.Lines()
		hunks = append(hunks, wholeFileHunk(lines, false))
		beforeExcerpt = lines
	default:
		oldLines, newLines := before.Lines(), after.Lines()
		if len(oldLines) != len(newLines) {
			hunks = append(hunks, wholeFileHunk(oldLines, false), wholeFileHunk(newLines, true))
			beforeExcerpt, afterExcerpt = oldLines, newLines
			break
		}
		for start := 0; start < len(oldLines); {
			if oldLines[start] == newLines[start] {
				start++
				continue
			}
			end := start
			for end < len(oldLines) && oldLines[end] != newLines[end] {
				end++
			}
			var body strings.Builder
			for _, l := range oldLines[start:end] {
				body.WriteString("-" + l + "\n")
			}
			for _, l := range newLines[start:end] {
				body.WriteString("+" + l + "\n")
			}
			hunks = append(hunks, &diff.Hunk{
				OrigStartLine: int32(start + 1),
				OrigLines:     int32(end - start),
				NewStartLine:  int32(start + 1),
				NewLines:      int32(end - start),
				Body:          []byte(body.String()),
			})
			beforeExcerpt = append(beforeExcerpt, oldLines[start:end]...)
			afterExcerpt = append(afterExcerpt, newLines[start:end]...)
			start = end
		}
	}

	fd := &diff.FileDiff{
		OrigName: "a/" + rel,
		NewName:  "b/" + rel,
		Hunks:    hunks,
	}
	rendered, err := diff.PrintFileDiff(fd)
	if err != nil {
		rendered = nil // excerpts still carry the change
	}
	return strings.Join(beforeExcerpt, "\n"), strings.Join(afterExcerpt, "\n"), string(rendered)
}

func wholeFileHunk(lines []string, added bool) *diff.Hunk {
	prefix := "-"
	if added {
		prefix = "+"
	}
	var body strings.Builder
	for _, l := range lines {
		body.WriteString(prefix + l + "\n")
	}
	h := &diff.Hunk{Body: []byte(body.String())}
	if added {
		h.NewStartLine = 1
		h.NewLines = int32(len(lines))
	} else {
		h.OrigStartLine = 1
		h.OrigLines = int32(len(lines))
	}
	return h
}
