package config

import "sort"

var Presets = map[string]*Config{
	"fractional": {
		Alpha: 0.75, Lambda: 1.0, N: 51, Gamma: 10.0,
		Method: "newton", Jacobian: JacobianFD, MaxIter: 100, Tol: 1e-10, EvalPoints: 201,
	},
	"classical": {
		Alpha: 1.0, Lambda: 1.0, N: 51, Gamma: 10.0,
		Method: "newton", Jacobian: JacobianFD, MaxIter: 100, Tol: 1e-10, EvalPoints: 201,
	},
	"linear": {
		Alpha: 0.75, Lambda: 0.0, N: 51, Gamma: 10.0,
		Method: "newton", Jacobian: JacobianAnalytic, MaxIter: 100, Tol: 1e-10, EvalPoints: 201,
	},
	"coarse": {
		Alpha: 0.75, Lambda: 1.0, N: 11, Gamma: 400.0,
		Method: "newton", Jacobian: JacobianAnalytic, MaxIter: 50, Tol: 1e-10, EvalPoints: 101,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Grid = append([]float64(nil), cfg.Grid...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
