package snapshot

import "testing"

func TestDocumentLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"no trailing newline", "a\nb", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"empty", "", nil},
		{"single line", "hello", []string{"hello"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDocument(1, 1, "/p/f.go", tt.text)
			got := d.Lines()
			if len(got) != len(tt.want) {
				t.Fatalf("Lines() = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDocumentOffsetOf(t *testing.T) {
	d := NewDocument(1, 1, "/p/f.go", "ab\ncd\n")

	tests := []struct {
		line, column, want int
	}{
		{1, 1, 0},
		{1, 2, 1},
		{2, 1, 3},
		{2, 2, 4},
		{2, 3, 5},  // caret after last char
		{3, 1, 6},  // caret at end of file
		{0, 1, -1}, // line below range
		{4, 1, -1}, // line past range
		{1, 99, -1},
	}
	for _, tt := range tests {
		if got := d.OffsetOf(tt.line, tt.column); got != tt.want {
			t.Errorf("OffsetOf(%d,%d) = %d, want %d", tt.line, tt.column, got, tt.want)
		}
	}
}

func TestDocumentLine(t *testing.T) {
	d := NewDocument(1, 1, "/p/f.go", "first\nsecond\n")

	if text, ok := d.Line(2); !ok || text != "second" {
		t.Errorf("Line(2) = %q, %v", text, ok)
	}
	if _, ok := d.Line(0); ok {
		t.Error("Line(0) should be out of range")
	}
	if _, ok := d.Line(3); ok {
		t.Error("Line(3) should be out of range")
	}
}
