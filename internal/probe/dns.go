package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/miekg/dns"
	"gopkg.in/yaml.v3"
)

func init() {
	Register("dns", buildDNS)
}

// dnsParams configures the DNS probe.
type dnsParams struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	TCP   bool   `yaml:"tcp"`
	QName string `yaml:"qname"`
	QType string `yaml:"qtype"`
}

// dnsProbe resolves qname/qtype against a single resolver. Grounded on the
// dns.Client/dns.Msg request-response idiom used throughout the retrieved
// corpus's DNS-client code (other_examples' classmarkets-go-dns-resolver).
type dnsProbe struct {
	addr  string
	net   string
	qname string
	qtype uint16
}

func buildDNS(node *yaml.Node) (Probe, error) {
	var p dnsParams
	if err := decodeParams(node, &p); err != nil {
		return nil, fmt.Errorf("dns: %w", err)
	}
	if p.Host == "" {
		return nil, fmt.Errorf("dns: host is required")
	}
	if p.QName == "" {
		return nil, fmt.Errorf("dns: qname is required")
	}
	if p.Port == 0 {
		p.Port = 53
	}
	qtype, ok := dns.StringToType[strings.ToUpper(p.QType)]
	if !ok {
		if p.QType == "" {
			qtype = dns.TypeA
		} else {
			return nil, fmt.Errorf("dns: unknown qtype %q", p.QType)
		}
	}
	network := "udp"
	if p.TCP {
		network = "tcp"
	}
	return &dnsProbe{
		addr:  net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		net:   network,
		qname: dns.Fqdn(p.QName),
		qtype: qtype,
	}, nil
}

func (p *dnsProbe) Execute(ctx context.Context) (string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(p.qname, p.qtype)
	msg.RecursionDesired = true

	client := &dns.Client{Net: p.net}
	if deadline, ok := ctx.Deadline(); ok {
		client.Timeout = timeUntil(deadline)
	}

	resp, _, err := client.ExchangeContext(ctx, msg, p.addr)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", p.addr, err)
	}
	if resp.Rcode == dns.RcodeNameError {
		return "", fmt.Errorf("%s: NXDOMAIN", p.qname)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("%s: rcode %s", p.qname, dns.RcodeToString[resp.Rcode])
	}
	if len(resp.Answer) == 0 {
		return "", fmt.Errorf("%s: no answer records", p.qname)
	}

	parts := make([]string, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		parts = append(parts, rr.String())
	}
	return strings.Join(parts, ","), nil
}
