package engine

// directions are the 8 compass steps as (dRow, dCol)
var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

func inBounds(r, c, rows, cols int) bool {
	return r >= 0 && r < rows && c >= 0 && c < cols
}

// forEachNeighbor calls fn for every in-bounds cell around (r, c)
func forEachNeighbor(r, c, rows, cols int, fn func(nr, nc int)) {
	for _, d := range directions {
		nr, nc := r+d[0], c+d[1]
		if inBounds(nr, nc, rows, cols) {
			fn(nr, nc)
		}
	}
}

// lineOf returns n points starting at (r, c) stepping by (dr, dc)
func lineOf(r, c, dr, dc, n int) []Point {
	line := make([]Point, n)
	for i := range line {
		line[i] = Point{Row: r + i*dr, Col: c + i*dc}
	}
	return line
}
