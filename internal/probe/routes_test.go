package probe

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
)

func withRouteLister(t *testing.T, fn routeLister) {
	t.Helper()
	original := listRoutes
	listRoutes = fn
	t.Cleanup(func() { listRoutes = original })
}

func TestDefaultRoutesProbeFindsGateway(t *testing.T) {
	withRouteLister(t, func() ([]netlink.Route, error) {
		return []netlink.Route{
			{Dst: nil, Gw: net.ParseIP("10.0.0.1")},
		}, nil
	})

	p := &defaultRoutesProbe{}
	msg, err := p.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", msg)
}

func TestDefaultRoutesProbeLinkScopedRouteSucceedsWithoutGateway(t *testing.T) {
	zeroMask := net.CIDRMask(0, 32)

	withRouteLister(t, func() ([]netlink.Route, error) {
		return []netlink.Route{
			{Dst: &net.IPNet{IP: net.IPv4zero, Mask: zeroMask}, Gw: nil},
		}, nil
	})

	p := &defaultRoutesProbe{}
	msg, err := p.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", msg)
}

func TestDefaultRoutesProbeNoDefaultRoute(t *testing.T) {
	mask := net.CIDRMask(24, 32)

	withRouteLister(t, func() ([]netlink.Route, error) {
		return []netlink.Route{
			{Dst: &net.IPNet{IP: net.ParseIP("192.168.1.0"), Mask: mask}},
		}, nil
	})

	p := &defaultRoutesProbe{}
	_, err := p.Execute(context.Background())
	assert.Error(t, err)
}

func TestIsDefaultRoute(t *testing.T) {
	assert.True(t, isDefaultRoute(netlink.Route{Dst: nil}))

	zeroMask := net.CIDRMask(0, 32)
	assert.True(t, isDefaultRoute(netlink.Route{Dst: &net.IPNet{IP: net.IPv4zero, Mask: zeroMask}}))

	fullMask := net.CIDRMask(24, 32)
	assert.False(t, isDefaultRoute(netlink.Route{Dst: &net.IPNet{IP: net.ParseIP("10.0.0.0"), Mask: fullMask}}))
}
