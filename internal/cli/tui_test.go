package cli

import (
	"context"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/wobble/pkg/pipeline"
	"github.com/matzehuels/wobble/pkg/poster"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestTUI(t *testing.T) *tuiModel {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	base := pipeline.Options{Config: poster.DefaultConfig()}
	return newTUIModel(context.Background(), runner, base, 42, t.TempDir())
}

func TestSliderClamp(t *testing.T) {
	cfg := poster.DefaultConfig()
	shapes := configSliders()[0]

	for range 40 {
		shapes.adjust(&cfg, 1)
	}
	if cfg.ShapeCount != 30 {
		t.Errorf("ShapeCount = %d, want 30", cfg.ShapeCount)
	}
	for range 40 {
		shapes.adjust(&cfg, -1)
	}
	if cfg.ShapeCount != 1 {
		t.Errorf("ShapeCount = %d, want 1", cfg.ShapeCount)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestSliderRangeStaysOrdered(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		dir      int
		steps    int
		wantLow  float64
		wantHigh float64
	}{
		{"alpha low drags high", 3, 1, 10, 0.75, 0.75},
		{"alpha high drags low", 4, -1, 10, 0.1, 0.1},
		{"size low drags high", 5, 1, 8, 0.55, 0.55},
		{"size high drags low", 6, -1, 10, 0.1, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := poster.DefaultConfig()
			s := configSliders()[tt.index]
			for range tt.steps {
				s.adjust(&cfg, tt.dir)
			}
			r := cfg.AlphaRange
			if tt.index >= 5 {
				r = cfg.SizeRange
			}
			if math.Abs(r.Low-tt.wantLow) > 1e-9 || math.Abs(r.High-tt.wantHigh) > 1e-9 {
				t.Errorf("range = %g,%g, want %g,%g", r.Low, r.High, tt.wantLow, tt.wantHigh)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() error: %v", err)
			}
		})
	}
}

func TestTUICursor(t *testing.T) {
	m := newTestTUI(t)

	m.Update(key("up"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up at top, want 0", m.cursor)
	}
	m.Update(key("j"))
	m.Update(key("down"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}
	for range 20 {
		m.Update(key("j"))
	}
	if m.cursor != len(m.sliders)-1 {
		t.Errorf("cursor = %d, want %d", m.cursor, len(m.sliders)-1)
	}
}

func TestTUIAdjustStartsPreview(t *testing.T) {
	m := newTestTUI(t)

	_, cmd := m.Update(key("right"))
	if cmd == nil {
		t.Fatal("adjust returned no command")
	}
	if m.cfg.ShapeCount != poster.DefaultShapeCount+1 {
		t.Errorf("ShapeCount = %d, want %d", m.cfg.ShapeCount, poster.DefaultShapeCount+1)
	}
	if m.gen != 1 {
		t.Errorf("gen = %d, want 1", m.gen)
	}
}

func TestTUIDropsStalePreview(t *testing.T) {
	m := newTestTUI(t)
	m.gen = 3

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	m.Update(previewMsg{gen: 2, img: img, took: "1ms"})
	if m.preview != "" {
		t.Error("stale preview was applied")
	}
	m.Update(previewMsg{gen: 3, img: img, took: "1ms"})
	if m.preview == "" {
		t.Error("current preview was dropped")
	}
}

func TestTUIPreviewAndSave(t *testing.T) {
	m := newTestTUI(t)

	msg := m.Init()()
	pm, ok := msg.(previewMsg)
	if !ok {
		t.Fatalf("Init produced %T, want previewMsg", msg)
	}
	if pm.err != nil {
		t.Fatalf("preview error: %v", pm.err)
	}
	m.Update(pm)
	if !strings.Contains(m.preview, "▀") {
		t.Error("preview has no half blocks")
	}
	if !strings.Contains(m.View(), "seed 42") {
		t.Error("view does not show the seed")
	}

	_, cmd := m.Update(key("s"))
	if cmd == nil {
		t.Fatal("save returned no command")
	}
	sm, ok := cmd().(savedMsg)
	if !ok {
		t.Fatal("save did not produce savedMsg")
	}
	if sm.err != nil {
		t.Fatalf("save error: %v", sm.err)
	}
	m.Update(sm)
	want := filepath.Join(m.output, "poster-42.png")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("saved poster missing: %v", err)
	}
	if len(m.saved) != 1 {
		t.Errorf("saved = %v, want one path", m.saved)
	}
}

func TestTUIQuit(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		m := newTestTUI(t)
		var msg tea.KeyMsg
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		} else {
			msg = key(k)
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%s: no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command did not quit", k)
		}
	}
}

func TestHalfBlocks(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			c := color.NRGBA{R: 255, A: 255}
			if y%2 == 1 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	out := halfBlocks(img, 4)
	if n := strings.Count(out, "▀"); n != 8 {
		t.Errorf("half blocks = %d, want 8", n)
	}
	if n := strings.Count(out, "\n"); n != 1 {
		t.Errorf("lines = %d, want 2", n+1)
	}
	if !strings.Contains(out, "38;2;255;0;0") || !strings.Contains(out, "48;2;0;0;255") {
		t.Errorf("unexpected colors in %q", out)
	}
}
