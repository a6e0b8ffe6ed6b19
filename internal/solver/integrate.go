package solver

import (
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/xpbd"
)

// Gravity is the per-step acceleration applied to free particles,
// pre-scaled for the unit-square cloth.
var Gravity = xpbd.Vec3{X: 0, Y: -9.8, Z: 0}.Scale(0.1)

// Integrate advances every free particle one Verlet-style prediction:
// velocity is inferred from position history, scaled by the damping
// factor, and gravity is added before the position update. Fixed
// particles keep both their current and previous positions.
func Integrate(c *cloth.Cloth, damping, dt float64) {
	g := Gravity.Scale(dt)
	for i := range c.Current {
		if c.Fixed[i] {
			continue
		}
		p := c.Current[i]
		v := p.Sub(c.Previous[i]).Scale(damping).Add(g)
		c.Previous[i] = p
		c.Current[i] = p.Add(v)
	}
}
