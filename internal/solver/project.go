package solver

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/xpbd"
)

// gaussSeidelEtaScale shrinks the warm-start carry-over in sequential
// mode. Sequential projection over-corrects relative to simultaneous
// projection, and the full eta feeds that back as jitter. Empirically
// tuned; keep in sync with the Jacobi path before changing.
const gaussSeidelEtaScale = 0.7

// Solver projects distance constraints with XPBD compliance. It owns the
// Jacobi workspace accumulator, which is drained at every iteration
// boundary so no correction leaks across iterations or steps.
type Solver struct {
	workspace []xpbd.Vec3
}

func New() *Solver {
	return &Solver{}
}

// Project runs p.Iterations constraint sweeps over the cloth. Within one
// iteration, Gauss-Seidel mode applies each correction immediately in
// constraint build order; Jacobi mode accumulates corrections and applies
// them together, under-relaxed by p.JacobiRelaxation.
func (s *Solver) Project(c *cloth.Cloth, p xpbd.Params, dt float64) error {
	aTilde := 1.0 / (p.Stiffness * dt * dt)

	if p.Mode == xpbd.Jacobi && len(s.workspace) != c.NumParticles() {
		s.workspace = make([]xpbd.Vec3, c.NumParticles())
	}

	for iter := 0; iter < p.Iterations; iter++ {
		for ci := range c.Constraints {
			con := &c.Constraints[ci]

			invMass0 := invMass(c.Fixed[con.P0])
			invMass1 := invMass(c.Fixed[con.P1])
			totalInvMass := invMass0 + invMass1
			if totalInvMass == 0 {
				// Both endpoints anchored; a 2-column grid links its two
				// anchors directly. Nothing to correct.
				continue
			}

			d := c.Current[con.P0].Sub(c.Current[con.P1])
			length := d.Length()
			if length == 0 {
				return fmt.Errorf("%w: constraint %d (particles %d, %d)",
					xpbd.ErrDegenerateGeometry, ci, con.P0, con.P1)
			}
			normal := d.Scale(1 / length)
			residual := length - con.RestLength

			// Iteration 0 never carries raw lambda into the compliance
			// term; within a step, later iterations do.
			var carried xpbd.Vec3
			if iter > 0 {
				carried = con.Lambda
			}
			deltaLambda := normal.Scale(residual).
				Add(carried.Scale(aTilde)).
				Scale(-1 / (totalInvMass + aTilde))

			if iter == 0 {
				if p.WarmStart {
					eta := p.Eta
					if p.Mode == xpbd.GaussSeidel {
						eta *= gaussSeidelEtaScale
					}
					// Re-inject a fraction of last frame's accumulated
					// impulse as the initial guess.
					deltaLambda = deltaLambda.Add(con.Lambda.Scale(eta))
				}
				// From here on lambda reflects only this step's total.
				con.Lambda = xpbd.Vec3{}
			}
			con.Lambda = con.Lambda.Add(deltaLambda)

			corr0 := deltaLambda.Scale(invMass0 / totalInvMass)
			corr1 := deltaLambda.Scale(-invMass1 / totalInvMass)

			if p.Mode == xpbd.Jacobi {
				s.workspace[con.P0] = s.workspace[con.P0].Add(corr0)
				s.workspace[con.P1] = s.workspace[con.P1].Add(corr1)
			} else {
				c.Current[con.P0] = c.Current[con.P0].Add(corr0)
				c.Current[con.P1] = c.Current[con.P1].Add(corr1)
			}
		}

		if p.Mode == xpbd.Jacobi {
			for i := range s.workspace {
				c.Current[i] = c.Current[i].Add(s.workspace[i].Scale(p.JacobiRelaxation))
				s.workspace[i] = xpbd.Vec3{}
			}
		}
	}

	return nil
}

func invMass(fixed bool) float64 {
	if fixed {
		return 0
	}
	return 1
}
