package metrics

import "github.com/san-kum/clothsim/internal/cloth"

// Kinetic estimates the cloth's kinetic energy from position history,
// with unit particle mass: sum of 0.5*|v|^2 where v = (cur-prev)/dt.
func Kinetic(c *cloth.Cloth, dt float64) float64 {
	if dt == 0 {
		return 0
	}
	sum := 0.0
	for i := range c.Current {
		if c.Fixed[i] {
			continue
		}
		v := c.Current[i].Sub(c.Previous[i]).Scale(1 / dt)
		sum += 0.5 * (v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	}
	return sum
}

// SettleEnergy tracks the final kinetic energy of a run, a proxy for how
// settled the cloth is when the run ends.
type SettleEnergy struct {
	dt   float64
	last float64
}

func NewSettleEnergy(dt float64) *SettleEnergy {
	return &SettleEnergy{dt: dt}
}

func (m *SettleEnergy) Name() string { return "settle_energy" }

func (m *SettleEnergy) Observe(c *cloth.Cloth, t float64) {
	m.last = Kinetic(c, m.dt)
}

func (m *SettleEnergy) Value() float64 { return m.last }

func (m *SettleEnergy) Reset() { m.last = 0 }
