package nlsolve

import (
	"fmt"
	"sort"
)

var methods = map[string]func() Method{
	"newton":  func() Method { return NewNewton() },
	"broyden": func() Method { return NewBroyden() },
}

// Lookup returns a fresh method by name.
func Lookup(name string) (Method, error) {
	fn, ok := methods[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver method: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

// Names lists the registered method names in sorted order.
func Names() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
