package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/vishvananda/netlink"
	"gopkg.in/yaml.v3"
)

func init() {
	Register("default_routes", buildDefaultRoutes)
}

// defaultRoutesProbe checks that the kernel routing table has at least one
// default route. It takes no configuration parameters.
type defaultRoutesProbe struct{}

func buildDefaultRoutes(node *yaml.Node) (Probe, error) {
	return &defaultRoutesProbe{}, nil
}

// routeLister is the subset of vishvananda/netlink this probe depends on,
// extracted so tests can substitute a fake routing table instead of
// touching the real kernel.
type routeLister func() ([]netlink.Route, error)

var listRoutes routeLister = func() ([]netlink.Route, error) {
	return netlink.RouteList(nil, netlink.FAMILY_ALL)
}

func (p *defaultRoutesProbe) Execute(ctx context.Context) (string, error) {
	routes, err := listRoutes()
	if err != nil {
		return "", fmt.Errorf("list routes: %w", err)
	}

	var count int
	var gateways []string
	for _, r := range routes {
		if !isDefaultRoute(r) {
			continue
		}
		count++
		if r.Gw != nil {
			gateways = append(gateways, r.Gw.String())
		}
	}
	if count == 0 {
		return "", fmt.Errorf("no default route")
	}
	return strings.Join(gateways, ","), nil
}

// isDefaultRoute reports whether r is a default route: no destination
// prefix, or a destination prefix of length 0 (0.0.0.0/0, ::/0).
func isDefaultRoute(r netlink.Route) bool {
	if r.Dst == nil {
		return true
	}
	ones, _ := r.Dst.Mask.Size()
	return ones == 0
}
