package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncatePath fuzzes TruncatePath with random paths and widths.
func FuzzTruncatePath(f *testing.F) {
	f.Add("data/wells.csv", 8)
	f.Add("", 0)
	f.Add("données/puits.csv", 4)
	f.Add("a/b/c", -1)

	f.Fuzz(func(t *testing.T, path string, width int) {
		got := TruncatePath(path, width)
		if width > 3 && utf8.RuneCountInString(path) > width {
			if n := utf8.RuneCountInString(got); n != width {
				t.Fatalf("TruncatePath(%q, %d) has %d runes", path, width, n)
			}
			return
		}
		if got != path {
			t.Fatalf("TruncatePath(%q, %d) = %q, want unchanged", path, width, got)
		}
	})
}
