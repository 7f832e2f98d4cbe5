package probe

import (
	"context"
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"
)

func init() {
	Register("interfaces", buildInterfaces)
}

type interfacesParams struct {
	Interfaces []string `yaml:"interfaces"`
}

// interfacesProbe checks that every configured interface exists, is UP and
// RUNNING, and has at least one address assigned.
type interfacesProbe struct {
	names []string
}

func buildInterfaces(node *yaml.Node) (Probe, error) {
	var p interfacesParams
	if err := decodeParams(node, &p); err != nil {
		return nil, fmt.Errorf("interfaces: %w", err)
	}
	if len(p.Interfaces) == 0 {
		return nil, fmt.Errorf("interfaces: interfaces list is required")
	}
	return &interfacesProbe{names: p.Interfaces}, nil
}

// linkLookup and addrLister are overridable for tests and for the
// Aggregator's virtual-interface query (see LinkUpRunning/LinkAddresses
// below), which needs the same netlink calls without a whole Probe.
var linkLookup = netlink.LinkByName
var addrLister = func(link netlink.Link) ([]netlink.Addr, error) {
	return netlink.AddrList(link, netlink.FAMILY_ALL)
}

func (p *interfacesProbe) Execute(ctx context.Context) (string, error) {
	for _, name := range p.names {
		if err := LinkUpRunning(name); err != nil {
			return "", err
		}
		addrs, err := LinkAddresses(name)
		if err != nil {
			return "", fmt.Errorf("interface %s: list addresses: %w", name, err)
		}
		if len(addrs) == 0 {
			return "", fmt.Errorf("interface %s: no address assigned", name)
		}
	}
	return "", nil
}

// LinkUpRunning reports whether the named interface exists and carries
// both the UP and RUNNING flags. Exported for the Aggregator's virtual
// interface query.
//
// netlink's LinkAttrs.Flags only ever carries net.FlagUp (its linkFlags()
// converter never sets FlagRunning), so RUNNING has to be read off
// RawFlags, the unconverted IFF_* bits straight from the kernel.
func LinkUpRunning(name string) error {
	link, err := linkLookup(name)
	if err != nil {
		return fmt.Errorf("interface %s: %w", name, err)
	}
	attrs := link.Attrs()
	if attrs.Flags&net.FlagUp == 0 {
		return fmt.Errorf("interface %s: not UP", name)
	}
	if attrs.RawFlags&unix.IFF_RUNNING == 0 {
		return fmt.Errorf("interface %s: not RUNNING", name)
	}
	return nil
}

// LinkAddresses returns the IP addresses (without prefix length) bound to
// the named interface.
func LinkAddresses(name string) ([]string, error) {
	link, err := linkLookup(name)
	if err != nil {
		return nil, fmt.Errorf("interface %s: %w", name, err)
	}
	addrs, err := addrLister(link)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a.IP != nil {
			out = append(out, a.IP.String())
		}
	}
	return out, nil
}
