package viz

import (
	"strings"
	"testing"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(0, 0)
	c.Set(3, 7)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1 in first cell, got %U", c.Grid[0][0])
	}
	if c.Grid[1][1] != 0x2880 {
		t.Errorf("expected dot 8 in last cell, got %U", c.Grid[1][1])
	}
	if c.Count() != 2 {
		t.Errorf("expected 2 lit dots, got %d", c.Count())
	}
}

func TestCanvasOutOfRange(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(-1, 0)
	c.Set(4, 0)
	c.Paint(0, 8, "#ffffff")
	if c.Count() != 0 {
		t.Errorf("expected no dots, got %d", c.Count())
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 3, 0)
	if c.Count() != 4 {
		t.Errorf("expected 4 dots, got %d", c.Count())
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(3, 3)
	c.Paint(1, 1, "#ff0000")
	c.Clear()
	if c.Count() != 0 {
		t.Error("expected empty canvas after clear")
	}
	if strings.ContainsAny(c.String(), "\x1b") {
		t.Error("plain string must not carry escapes")
	}
}

func TestCanvasRender(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Paint(0, 0, "#00ff00")
	out := c.Render()
	if !strings.Contains(out, string(rune(0x2801))) {
		t.Errorf("rendered canvas lost the dot: %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected one line, got %q", out)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("expected empty line, got %q", got)
	}
	if got := Sparkline([]float64{0, 1}, 2); got != "▁█" {
		t.Errorf("expected ▁█, got %q", got)
	}
}
