// Package metrics measures solver quality: constraint residuals, stretch
// and kinetic energy.
package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
)

// RMSResidual returns the root-mean-square constraint violation, in rest
// units of the cloth.
func RMSResidual(c *cloth.Cloth) float64 {
	if len(c.Constraints) == 0 {
		return 0
	}
	sum := 0.0
	for _, con := range c.Constraints {
		r := c.Current[con.P0].Sub(c.Current[con.P1]).Length() - con.RestLength
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(c.Constraints)))
}

// MaxStretch returns the largest |length-rest|/rest ratio over all
// constraints.
func MaxStretch(c *cloth.Cloth) float64 {
	max := 0.0
	for _, con := range c.Constraints {
		if con.RestLength == 0 {
			continue
		}
		length := c.Current[con.P0].Sub(c.Current[con.P1]).Length()
		s := math.Abs(length-con.RestLength) / con.RestLength
		if s > max {
			max = s
		}
	}
	return max
}

// MeanResidual accumulates the average RMS residual over a run.
type MeanResidual struct {
	sum     float64
	samples int
}

func NewMeanResidual() *MeanResidual { return &MeanResidual{} }

func (m *MeanResidual) Name() string { return "mean_residual" }

func (m *MeanResidual) Observe(c *cloth.Cloth, t float64) {
	m.sum += RMSResidual(c)
	m.samples++
}

func (m *MeanResidual) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanResidual) Reset() {
	m.sum = 0
	m.samples = 0
}

// PeakStretch accumulates the worst stretch ratio seen over a run.
type PeakStretch struct {
	max float64
}

func NewPeakStretch() *PeakStretch { return &PeakStretch{} }

func (m *PeakStretch) Name() string { return "peak_stretch" }

func (m *PeakStretch) Observe(c *cloth.Cloth, t float64) {
	if s := MaxStretch(c); s > m.max {
		m.max = s
	}
}

func (m *PeakStretch) Value() float64 { return m.max }

func (m *PeakStretch) Reset() { m.max = 0 }
