// Package cloth builds the particle grid and distance constraint set.
//
// Construction is deterministic: identical dimensions always yield
// identical positions, fixed masks and constraint order. The constraint
// order matters because Gauss-Seidel projection results depend on it.
package cloth

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/xpbd"
)

// Constraint ties two particles (by index) to a rest distance. Lambda is
// the accumulated Lagrange multiplier; it is the only state that survives
// across steps and feeds warm-starting.
type Constraint struct {
	P0, P1     int
	RestLength float64
	Lambda     xpbd.Vec3
}

// Cloth holds the full simulation state: flat particle arrays plus the
// constraint list. Constraints reference particles by index, never by
// pointer, so a reset can replace the arrays wholesale.
type Cloth struct {
	Cols, Rows  int
	Current     []xpbd.Vec3
	Previous    []xpbd.Vec3
	Fixed       []bool
	Constraints []Constraint
}

// Build lays cols*rows particles on a unit square centered at the origin
// and connects them with vertical, horizontal and diagonal shear
// constraints, in that order. The two top corners are fixed anchors.
func Build(cols, rows int) (*Cloth, error) {
	if cols < 2 || rows < 2 {
		return nil, fmt.Errorf("%w: got %dx%d", xpbd.ErrGridTooSmall, cols, rows)
	}

	n := cols * rows
	c := &Cloth{
		Cols:     cols,
		Rows:     rows,
		Current:  make([]xpbd.Vec3, 0, n),
		Previous: make([]xpbd.Vec3, n),
		Fixed:    make([]bool, 0, n),
	}

	for i := 0; i < cols; i++ {
		for j := 0; j < rows; j++ {
			x := float64(i)/float64(cols) - 0.5
			y := float64(j)/float64(rows) - 0.5
			// The small z tilt keeps the sheet off a perfect plane.
			c.Current = append(c.Current, xpbd.Vec3{X: x, Y: -y, Z: x * 0.01})
			c.Fixed = append(c.Fixed, j == 0 && (i == 0 || i == cols-1))
		}
	}
	copy(c.Previous, c.Current)

	// Vertical structural constraints.
	for i := 0; i < cols; i++ {
		for j := 0; j < rows-1; j++ {
			c.link(c.index(i, j), c.index(i, j+1))
		}
	}
	// Horizontal structural constraints.
	for i := 0; i < cols-1; i++ {
		for j := 0; j < rows; j++ {
			c.link(c.index(i, j), c.index(i+1, j))
		}
	}
	// Diagonal shear constraints, both directions per cell.
	for i := 0; i < cols-1; i++ {
		for j := 0; j < rows-1; j++ {
			c.link(c.index(i, j), c.index(i+1, j+1))
			c.link(c.index(i+1, j), c.index(i, j+1))
		}
	}

	return c, nil
}

func (c *Cloth) index(i, j int) int { return i*c.Rows + j }

func (c *Cloth) link(p0, p1 int) {
	c.Constraints = append(c.Constraints, Constraint{
		P0:         p0,
		P1:         p1,
		RestLength: c.Current[p0].Sub(c.Current[p1]).Length(),
	})
}

// NumParticles returns the particle count.
func (c *Cloth) NumParticles() int { return len(c.Current) }

// ClearLambdas zeroes every constraint's accumulated multiplier. Stale
// impulses are not valid carry-over after a mode or warm-start change.
func (c *Cloth) ClearLambdas() {
	for i := range c.Constraints {
		c.Constraints[i].Lambda = xpbd.Vec3{}
	}
}

// Edges returns the constraint index pairs in build order, for drawing.
func (c *Cloth) Edges() [][2]int {
	edges := make([][2]int, len(c.Constraints))
	for i, con := range c.Constraints {
		edges[i] = [2]int{con.P0, con.P1}
	}
	return edges
}
