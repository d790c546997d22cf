package formula

import (
	"fmt"
	"strings"
)

// Func describes a spreadsheet function by name and accepted arity.
// MaxArgs < 0 means variadic.
type Func struct {
	Name    string
	MinArgs int
	MaxArgs int
}

// Accepts reports whether n arguments are valid for the function
func (f *Func) Accepts(n int) bool {
	return n >= f.MinArgs && (f.MaxArgs < 0 || n <= f.MaxArgs)
}

// Registry is an immutable catalogue of function descriptors. Callers borrow
// descriptors for the duration of one tool invocation.
type Registry struct {
	funcs map[string]*Func
}

// NewRegistry builds a registry from descriptors
func NewRegistry(funcs ...Func) *Registry {
	r := &Registry{funcs: make(map[string]*Func, len(funcs))}
	for i := range funcs {
		f := funcs[i]
		r.funcs[strings.ToUpper(f.Name)] = &f
	}
	return r
}

// Lookup finds a function by case-insensitive name
func (r *Registry) Lookup(name string) (*Func, error) {
	f, ok := r.funcs[strings.ToUpper(name)]
	if !ok {
		return nil, fmt.Errorf("unknown function %s", name)
	}
	return f, nil
}

// Names returns every registered name
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		out = append(out, n)
	}
	return out
}

// DefaultRegistry holds the functions the analysis tools emit
func DefaultRegistry() *Registry {
	return NewRegistry(
		Func{"AVERAGE", 1, -1},
		Func{"COUNT", 1, -1},
		Func{"SUM", 1, -1},
		Func{"MIN", 1, -1},
		Func{"MAX", 1, -1},
		Func{"MEDIAN", 1, -1},
		Func{"MODE", 1, -1},
		Func{"STDEV", 1, -1},
		Func{"VAR", 1, -1},
		Func{"KURT", 1, -1},
		Func{"SKEW", 1, -1},
		Func{"SQRT", 1, 1},
		Func{"LARGE", 2, 2},
		Func{"SMALL", 2, 2},
		Func{"TINV", 2, 2},
		Func{"TDIST", 3, 3},
		Func{"FINV", 3, 3},
		Func{"FDIST", 3, 3},
		Func{"NORMSDIST", 1, 1},
		Func{"NORMSINV", 1, 1},
		Func{"CORREL", 2, 2},
		Func{"COVAR", 2, 2},
		Func{"SUMXMY2", 2, 2},
		Func{"INDEX", 2, 3},
		Func{"RANK", 2, 3},
		Func{"PERCENTRANK", 2, 3},
		Func{"NA", 0, 0},
	)
}

// Resolver looks up a fixed set of names once and returns the first error
type Resolver struct {
	reg interface {
		Lookup(name string) (*Func, error)
	}
	err error
}

// NewResolver wraps any registry with Lookup
func NewResolver(reg interface {
	Lookup(name string) (*Func, error)
}) *Resolver {
	return &Resolver{reg: reg}
}

// Get returns the named descriptor, remembering the first failure
func (r *Resolver) Get(name string) *Func {
	f, err := r.reg.Lookup(name)
	if err != nil {
		if r.err == nil {
			r.err = err
		}
		return &Func{Name: name, MaxArgs: -1}
	}
	return f
}

// Err returns the first lookup failure
func (r *Resolver) Err() error { return r.err }
