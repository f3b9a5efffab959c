package scene

import "math"

// Mesh is a wireframe: vertices plus the index pairs joining them
type Mesh struct {
	Vertices []Vec3
	Edges    [][2]int
}

// Triangle returns the single-triangle demo mesh
func Triangle() Mesh {
	return Mesh{
		Vertices: []Vec3{
			{-0.5, -0.5, 0},
			{0.5, -0.5, 0},
			{0, 0.5, 0},
		},
		Edges: [][2]int{{0, 1}, {1, 2}, {2, 0}},
	}
}

// Cube returns a unit cube centred on the origin
func Cube() Mesh {
	return Mesh{
		Vertices: []Vec3{
			{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
			{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
		},
		Edges: [][2]int{
			{0, 1}, {1, 2}, {2, 3}, {3, 0}, // back
			{4, 5}, {5, 6}, {6, 7}, {7, 4}, // front
			{0, 4}, {1, 5}, {2, 6}, {3, 7}, // sides
		},
	}
}

// GridOffsets lays n instances out on a square grid in the XZ plane,
// centred on the origin. These are the per-instance attribute offsets of
// the instanced demo.
func GridOffsets(n int, spacing float64) []Vec3 {
	if n <= 0 {
		return nil
	}
	side := gridSide(n)
	half := float64(side-1) / 2

	offsets := make([]Vec3, n)
	for i := range offsets {
		col := float64(i % side)
		row := float64(i / side)
		offsets[i] = Vec3{
			X: (col - half) * spacing,
			Z: (row - half) * spacing,
		}
	}
	return offsets
}

func gridSide(n int) int {
	return int(math.Ceil(math.Sqrt(float64(n))))
}
