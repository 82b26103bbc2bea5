package sdktests

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrUnknownModule is returned by Resolve for a module name that was never registered.
var ErrUnknownModule = errors.New("unknown test module")

// TestModules lists the modules run by default, in the order they run.
var TestModules = []string{
	"toolchain_test",
	"chrome_mock_test",
}

// Module is the entry point of a test module. It receives the module-level scope and starts
// its tests as subtests.
type Module func(t *T)

type NamedModule struct {
	Name   string
	Module Module
}

// Registry maps module names to their entry points. Modules are registered explicitly; there
// is no discovery.
type Registry struct {
	modules map[string]Module
}

func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// DefaultRegistry returns a registry containing every module in TestModules.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("toolchain_test", DoToolchainTests)
	r.Register("chrome_mock_test", DoChromeMockTests)
	return r
}

// Register adds a module. Registering the same name twice is a programming error and panics.
func (r *Registry) Register(name string, module Module) {
	if _, ok := r.modules[name]; ok {
		panic(fmt.Sprintf("test module %q registered twice", name))
	}
	r.modules[name] = module
}

// Resolve looks up every name, keeping the order given. If any name is unknown, nothing is
// returned and the error lists all of the unknown names.
func (r *Registry) Resolve(names []string) ([]NamedModule, error) {
	var merr *multierror.Error
	ret := make([]NamedModule, 0, len(names))
	for _, name := range names {
		m, ok := r.modules[name]
		if !ok {
			merr = multierror.Append(merr, fmt.Errorf("%w: %s", ErrUnknownModule, name))
			continue
		}
		ret = append(ret, NamedModule{Name: name, Module: m})
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return ret, nil
}
