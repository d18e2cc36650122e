package viz

import (
	"fmt"
	"strings"
	"testing"
)

func TestCanvasMark(t *testing.T) {
	c := NewCanvas(11, 11, -1, 1, 0, 2)

	c.Mark(0, 1, 'o') // window center
	if c.Grid[5][5] != 'o' {
		t.Errorf("center mark landed at %q", findRune(c, 'o'))
	}

	c.Mark(-1, 0, 'a') // bottom-left corner
	if c.Grid[10][0] != 'a' {
		t.Errorf("corner mark landed at %q", findRune(c, 'a'))
	}

	// out-of-window points are dropped silently
	c.Mark(5, 5, 'x')
	if strings.ContainsRune(c.String(), 'x') {
		t.Error("out-of-window mark should not be drawn")
	}
}

func TestCanvasHLine(t *testing.T) {
	c := NewCanvas(10, 5, 0, 1, 0, 1)
	c.HLine(0, 1, 0, '=')

	bottom := strings.Split(c.String(), "\n")[4]
	if bottom != strings.Repeat("=", 10) {
		t.Errorf("bottom row = %q, want full line", bottom)
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(4, 4, 0, 1, 0, 1)
	c.Mark(0.5, 0.5, '#')
	c.Clear()
	if strings.ContainsRune(c.String(), '#') {
		t.Error("clear should erase all marks")
	}
}

func TestCanvasStringShape(t *testing.T) {
	c := NewCanvas(3, 2, 0, 1, 0, 1)
	lines := strings.Split(c.String(), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	for i, line := range lines {
		if len([]rune(line)) != 3 {
			t.Errorf("line %d width = %d, want 3", i, len([]rune(line)))
		}
	}
}

func findRune(c *Canvas, r rune) string {
	for y := range c.Grid {
		for x := range c.Grid[y] {
			if c.Grid[y][x] == r {
				return fmt.Sprintf("row %d col %d", y, x)
			}
		}
	}
	return "nowhere"
}
