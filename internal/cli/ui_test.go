package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{42 * 1024, "42.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestStatusGoesToStatusOut(t *testing.T) {
	var buf bytes.Buffer
	old := statusOut
	statusOut = &buf
	defer func() { statusOut = old }()

	printSuccess("wrote %d files", 2)
	printStats(42, 8, 2048, true)
	printFile("poster-42.png")

	out := buf.String()
	for _, want := range []string{"wrote 2 files", "seed 42", "8 shapes", "2.0 KB", "cached", "poster-42.png"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "\n"); n != 3 {
		t.Errorf("status output has %d lines, want 3", n)
	}
}
