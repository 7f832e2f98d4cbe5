// Package probe defines the Probe contract and the built-in variants RSCheck
// ships with: DNS, DefaultRoutes, Interfaces, TCP, UDPRequest, URL, Sysctl,
// StatusFile and Maintenance.
//
// Each variant is registered under its YAML "class" name in registry so
// that internal/config can construct one from a check's configuration
// without a type switch spread across packages.
package probe

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Probe is a single health check. Execute must abandon in-flight work and
// return an error once ctx is done; it must not retain state across
// invocations other than its own immutable configuration built at
// construction time.
type Probe interface {
	// Execute runs one check cycle. On success it returns a (possibly
	// empty) success-detail message and a nil error. On failure it
	// returns a non-nil error describing the cause; the returned string
	// is ignored in that case.
	Execute(ctx context.Context) (message string, err error)
}

// Builder constructs a Probe from a check's kind-specific YAML parameters.
// internal/config passes the check's whole mapping node, common keys
// (class, interval, ...) included, which a Builder ignores; a nil node is
// treated as carrying no parameters.
type Builder func(node *yaml.Node) (Probe, error)

// registry maps a "class" name from the configuration file to the
// Builder that constructs that variant. Populated by init() in each
// variant's source file, so the set of supported classes is a
// compile-time closed set: an unknown class name is rejected at config
// load time, not discovered later at runtime.
var registry = map[string]Builder{}

// Register adds a Builder under name. Called from each variant's init().
// Panics on a duplicate name: that is a programming error, never a
// configuration error.
func Register(name string, b Builder) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("probe: duplicate registration for class %q", name))
	}
	registry[name] = b
}

// Build constructs the Probe named by class from node. It returns an error
// the config loader can wrap with the offending check's name when class is
// unknown or node fails to decode into that variant's parameters.
func Build(class string, node *yaml.Node) (Probe, error) {
	b, ok := registry[class]
	if !ok {
		return nil, fmt.Errorf("unknown check class %q", class)
	}
	return b(node)
}

// decodeParams decodes node into v, treating a nil node as "no parameters
// given" (v keeps its zero value, which callers should validate).
func decodeParams(node *yaml.Node, v any) error {
	if node == nil {
		return nil
	}
	return node.Decode(v)
}
