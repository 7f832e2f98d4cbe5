package probe

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

type fakeLink struct {
	attrs netlink.LinkAttrs
}

func (f *fakeLink) Attrs() *netlink.LinkAttrs { return &f.attrs }
func (f *fakeLink) Type() string              { return "fake" }

func withLinkFakes(t *testing.T, link netlink.Link, linkErr error, addrs []netlink.Addr, addrErr error) {
	t.Helper()
	originalLookup := linkLookup
	originalAddrs := addrLister
	linkLookup = func(name string) (netlink.Link, error) { return link, linkErr }
	addrLister = func(netlink.Link) ([]netlink.Addr, error) { return addrs, addrErr }
	t.Cleanup(func() {
		linkLookup = originalLookup
		addrLister = originalAddrs
	})
}

func TestLinkUpRunningRequiresBothFlags(t *testing.T) {
	up := &fakeLink{attrs: netlink.LinkAttrs{Flags: net.FlagUp, RawFlags: unix.IFF_UP | unix.IFF_RUNNING}}
	withLinkFakes(t, up, nil, nil, nil)
	assert.NoError(t, LinkUpRunning("eth0"))

	down := &fakeLink{attrs: netlink.LinkAttrs{Flags: net.FlagUp, RawFlags: unix.IFF_UP}}
	withLinkFakes(t, down, nil, nil, nil)
	assert.Error(t, LinkUpRunning("eth0"))
}

func TestLinkAddresses(t *testing.T) {
	link := &fakeLink{attrs: netlink.LinkAttrs{Flags: net.FlagUp, RawFlags: unix.IFF_UP | unix.IFF_RUNNING}}
	addrs := []netlink.Addr{{IPNet: &net.IPNet{IP: net.ParseIP("10.0.0.5")}}}
	withLinkFakes(t, link, nil, addrs, nil)

	got, err := LinkAddresses("eth0")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.5"}, got)
}

func TestInterfacesProbeRequiresAddress(t *testing.T) {
	link := &fakeLink{attrs: netlink.LinkAttrs{Flags: net.FlagUp, RawFlags: unix.IFF_UP | unix.IFF_RUNNING}}
	withLinkFakes(t, link, nil, nil, nil)

	p := &interfacesProbe{names: []string{"eth0"}}
	_, err := p.Execute(context.Background())
	assert.Error(t, err)
}

func TestInterfacesProbeSucceeds(t *testing.T) {
	link := &fakeLink{attrs: netlink.LinkAttrs{Flags: net.FlagUp, RawFlags: unix.IFF_UP | unix.IFF_RUNNING}}
	addrs := []netlink.Addr{{IPNet: &net.IPNet{IP: net.ParseIP("10.0.0.5")}}}
	withLinkFakes(t, link, nil, addrs, nil)

	p := &interfacesProbe{names: []string{"eth0"}}
	_, err := p.Execute(context.Background())
	assert.NoError(t, err)
}
