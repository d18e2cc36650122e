package viz

// Canvas is a fixed-size rune grid for terminal side views. World coordinates
// are mapped through a rectangular window onto the grid.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	// world window, X right and Y up
	MinX, MaxX float64
	MinY, MaxY float64
}

func NewCanvas(width, height int, minX, maxX, minY, maxY float64) *Canvas {
	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
	}
	c := &Canvas{
		Width: width, Height: height, Grid: grid,
		MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY,
	}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	for y := range c.Grid {
		for x := range c.Grid[y] {
			c.Grid[y][x] = ' '
		}
	}
}

func (c *Canvas) Set(col, row int, r rune) {
	if col >= 0 && col < c.Width && row >= 0 && row < c.Height {
		c.Grid[row][col] = r
	}
}

// Mark plots a world-space point.
func (c *Canvas) Mark(x, y float64, r rune) {
	col, row := c.project(x, y)
	c.Set(col, row, r)
}

// HLine draws a horizontal world-space line at height y between x0 and x1.
func (c *Canvas) HLine(x0, x1, y float64, r rune) {
	c0, row := c.project(x0, y)
	c1, _ := c.project(x1, y)
	if c1 < c0 {
		c0, c1 = c1, c0
	}
	for col := c0; col <= c1; col++ {
		c.Set(col, row, r)
	}
}

func (c *Canvas) project(x, y float64) (col, row int) {
	spanX := c.MaxX - c.MinX
	spanY := c.MaxY - c.MinY
	if spanX <= 0 || spanY <= 0 {
		return -1, -1
	}
	col = int((x - c.MinX) / spanX * float64(c.Width-1))
	row = int((1 - (y-c.MinY)/spanY) * float64(c.Height-1))
	return col, row
}

func (c *Canvas) String() string {
	out := make([]rune, 0, (c.Width+1)*c.Height)
	for _, row := range c.Grid {
		out = append(out, row...)
		out = append(out, '\n')
	}
	return string(out[:len(out)-1])
}
