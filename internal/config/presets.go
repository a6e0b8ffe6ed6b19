package config

// Presets are named starting configurations for the simulator.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"rigid": {
		Grid: GridConfig{Cols: 10, Rows: 10},
		Solver: SolverConfig{
			Iterations: 8, Stiffness: 1e7, Mode: "gauss-seidel",
			WarmStart: true, Eta: 1.0, Damping: 0.6, JacobiRelaxation: 0.6,
		},
		Duration: 10.0,
	},
	"soft": {
		Grid: GridConfig{Cols: 10, Rows: 10},
		Solver: SolverConfig{
			Iterations: 2, Stiffness: 1e3, Mode: "gauss-seidel",
			WarmStart: true, Eta: 1.0, Damping: 0.6, JacobiRelaxation: 0.6,
		},
		Duration: 10.0,
	},
	"jacobi": {
		Grid: GridConfig{Cols: 10, Rows: 10},
		Solver: SolverConfig{
			Iterations: 4, Stiffness: 5000, Mode: "jacobi",
			WarmStart: true, Eta: 1.0, Damping: 0.6, JacobiRelaxation: 0.6,
		},
		Duration: 10.0,
	},
	"cold": {
		Grid: GridConfig{Cols: 10, Rows: 10},
		Solver: SolverConfig{
			Iterations: 2, Stiffness: 5000, Mode: "gauss-seidel",
			WarmStart: false, Eta: 0.0, Damping: 0.6, JacobiRelaxation: 0.6,
		},
		Duration: 10.0,
	},
	"dense": {
		Grid: GridConfig{Cols: 24, Rows: 24},
		Solver: SolverConfig{
			Iterations: 4, Stiffness: 5000, Mode: "gauss-seidel",
			WarmStart: true, Eta: 1.0, Damping: 0.6, JacobiRelaxation: 0.6,
		},
		Duration: 15.0,
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
