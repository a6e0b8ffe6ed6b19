package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/xpbd"
)

const dt = 1.0 / 60.0

// pair builds a minimal two-particle system with one constraint.
func pair(p0, p1 xpbd.Vec3, fixed0, fixed1 bool, rest float64) *cloth.Cloth {
	return &cloth.Cloth{
		Cols:     2,
		Rows:     1,
		Current:  []xpbd.Vec3{p0, p1},
		Previous: []xpbd.Vec3{p0, p1},
		Fixed:    []bool{fixed0, fixed1},
		Constraints: []cloth.Constraint{
			{P0: 0, P1: 1, RestLength: rest},
		},
	}
}

func TestIntegrateGravityOnly(t *testing.T) {
	start := xpbd.Vec3{X: 0.1, Y: 0.2, Z: 0}
	c := &cloth.Cloth{
		Current:  []xpbd.Vec3{start},
		Previous: []xpbd.Vec3{start},
		Fixed:    []bool{false},
	}

	Integrate(c, 1.0, dt)

	// Zero initial velocity, damping 1: displacement is exactly gravity*dt.
	want := start.Add(Gravity.Scale(dt))
	if c.Current[0] != want {
		t.Errorf("expected %v, got %v", want, c.Current[0])
	}
	if c.Previous[0] != start {
		t.Errorf("previous should hold pre-step position, got %v", c.Previous[0])
	}
}

func TestIntegrateDamping(t *testing.T) {
	prev := xpbd.Vec3{X: 0, Y: 0, Z: 0}
	cur := xpbd.Vec3{X: 0.1, Y: 0, Z: 0}
	c := &cloth.Cloth{
		Current:  []xpbd.Vec3{cur},
		Previous: []xpbd.Vec3{prev},
		Fixed:    []bool{false},
	}

	damping := 0.5
	Integrate(c, damping, dt)

	want := cur.Add(cur.Sub(prev).Scale(damping).Add(Gravity.Scale(dt)))
	if c.Current[0] != want {
		t.Errorf("expected %v, got %v", want, c.Current[0])
	}
}

func TestIntegrateFixedUnchanged(t *testing.T) {
	pos := xpbd.Vec3{X: 1, Y: 2, Z: 3}
	c := &cloth.Cloth{
		Current:  []xpbd.Vec3{pos},
		Previous: []xpbd.Vec3{pos},
		Fixed:    []bool{true},
	}

	Integrate(c, 0.6, dt)

	if c.Current[0] != pos || c.Previous[0] != pos {
		t.Errorf("fixed particle moved: cur=%v prev=%v", c.Current[0], c.Previous[0])
	}
}

func TestFixedParticleInvariant(t *testing.T) {
	c, err := cloth.Build(6, 6)
	if err != nil {
		t.Fatal(err)
	}

	var anchors []int
	var anchorPos []xpbd.Vec3
	for i, fixed := range c.Fixed {
		if fixed {
			anchors = append(anchors, i)
			anchorPos = append(anchorPos, c.Current[i])
		}
	}

	s := New()
	p := xpbd.DefaultParams()
	for step := 0; step < 30; step++ {
		Integrate(c, p.Damping, dt)
		if err := s.Project(c, p, dt); err != nil {
			t.Fatal(err)
		}
		for k, i := range anchors {
			if c.Current[i] != anchorPos[k] {
				t.Fatalf("step %d: anchor %d moved to %v", step, i, c.Current[i])
			}
		}
	}
}

func TestWarmStartNeutralityWithZeroEta(t *testing.T) {
	run := func(warm bool) *cloth.Cloth {
		c, err := cloth.Build(5, 5)
		if err != nil {
			t.Fatal(err)
		}
		s := New()
		p := xpbd.DefaultParams()
		p.WarmStart = warm
		p.Eta = 0
		for step := 0; step < 10; step++ {
			Integrate(c, p.Damping, dt)
			if err := s.Project(c, p, dt); err != nil {
				t.Fatal(err)
			}
		}
		return c
	}

	warm := run(true)
	cold := run(false)

	for i := range warm.Current {
		if warm.Current[i] != cold.Current[i] {
			t.Fatalf("particle %d diverged: warm=%v cold=%v", i, warm.Current[i], cold.Current[i])
		}
	}
}

func TestStiffnessLimitConvergence(t *testing.T) {
	prevErr := math.Inf(1)
	for _, stiffness := range []float64{1e2, 1e4, 1e6, 1e8} {
		c := pair(xpbd.Vec3{}, xpbd.Vec3{Y: -1.5}, true, false, 1.0)
		s := New()
		p := xpbd.DefaultParams()
		p.Stiffness = stiffness
		p.Iterations = 4
		p.WarmStart = false

		if err := s.Project(c, p, dt); err != nil {
			t.Fatal(err)
		}

		dist := c.Current[0].Sub(c.Current[1]).Length()
		gap := math.Abs(dist - 1.0)
		if gap >= prevErr {
			t.Errorf("stiffness %g: error %g did not shrink from %g", stiffness, gap, prevErr)
		}
		prevErr = gap
	}
	if prevErr > 1e-6 {
		t.Errorf("rigid-rod limit not reached: final error %g", prevErr)
	}
}

func TestSingleConstraintModeEquivalence(t *testing.T) {
	start := xpbd.Vec3{Y: -1.4}
	gs := pair(xpbd.Vec3{}, start, true, false, 1.0)
	ja := pair(xpbd.Vec3{}, start, true, false, 1.0)

	p := xpbd.DefaultParams()
	p.Iterations = 1
	p.WarmStart = false
	p.JacobiRelaxation = 1.0

	p.Mode = xpbd.GaussSeidel
	if err := New().Project(gs, p, dt); err != nil {
		t.Fatal(err)
	}
	p.Mode = xpbd.Jacobi
	if err := New().Project(ja, p, dt); err != nil {
		t.Fatal(err)
	}

	// One constraint, no contention: the projection orders coincide.
	for i := range gs.Current {
		if gs.Current[i] != ja.Current[i] {
			t.Fatalf("particle %d: gauss-seidel=%v jacobi=%v", i, gs.Current[i], ja.Current[i])
		}
	}
}

func TestBothEndpointsFixedSkipped(t *testing.T) {
	a := xpbd.Vec3{}
	b := xpbd.Vec3{X: 1.7}
	c := pair(a, b, true, true, 1.0)

	if err := New().Project(c, xpbd.DefaultParams(), dt); err != nil {
		t.Fatalf("degenerate-mass constraint must be skipped, got %v", err)
	}
	if c.Current[0] != a || c.Current[1] != b {
		t.Error("skipped constraint still moved particles")
	}
	if !c.Constraints[0].Lambda.IsZero() {
		t.Error("skipped constraint accumulated lambda")
	}
}

func TestCoincidentParticlesError(t *testing.T) {
	c := pair(xpbd.Vec3{X: 0.3}, xpbd.Vec3{X: 0.3}, true, false, 1.0)

	err := New().Project(c, xpbd.DefaultParams(), dt)
	if !errors.Is(err, xpbd.ErrDegenerateGeometry) {
		t.Fatalf("expected ErrDegenerateGeometry, got %v", err)
	}
}

func TestColdStartMatchesAfterLambdaClear(t *testing.T) {
	// Two identical systems with stale lambdas: clearing the stored
	// impulse must make a warm-started step equal a cold-started one.
	stale := xpbd.Vec3{X: 0.01, Y: -0.02, Z: 0}
	warm := pair(xpbd.Vec3{}, xpbd.Vec3{Y: -1.2}, true, false, 1.0)
	cold := pair(xpbd.Vec3{}, xpbd.Vec3{Y: -1.2}, true, false, 1.0)
	warm.Constraints[0].Lambda = stale
	cold.Constraints[0].Lambda = stale

	warm.ClearLambdas()
	pw := xpbd.DefaultParams()
	pw.WarmStart = true
	if err := New().Project(warm, pw, dt); err != nil {
		t.Fatal(err)
	}

	cold.ClearLambdas()
	pc := xpbd.DefaultParams()
	pc.WarmStart = false
	if err := New().Project(cold, pc, dt); err != nil {
		t.Fatal(err)
	}

	if warm.Current[1] != cold.Current[1] {
		t.Fatalf("cleared warm start %v differs from cold start %v", warm.Current[1], cold.Current[1])
	}
}

func TestSolverLambdaSignPullsInward(t *testing.T) {
	c := pair(xpbd.Vec3{}, xpbd.Vec3{Y: -1.5}, true, false, 1.0)
	p := xpbd.DefaultParams()
	p.Iterations = 1
	p.WarmStart = false

	if err := New().Project(c, p, dt); err != nil {
		t.Fatal(err)
	}

	// The free particle hangs below the anchor, over-stretched, so the
	// correction must pull it up.
	if c.Current[1].Y <= -1.5 {
		t.Errorf("free particle not pulled toward rest length: %v", c.Current[1])
	}
	if c.Current[1].Sub(c.Current[0]).Length() >= 1.5 {
		t.Error("distance did not decrease")
	}
}
