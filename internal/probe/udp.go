package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func init() {
	Register("udp_request", buildUDPRequest)
}

type udpRequestParams struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Request         string `yaml:"request"`
	Response        string `yaml:"response"`
	MaxResponseSize int    `yaml:"max_response_size"`
}

// udpRequestProbe sends a fixed request datagram and checks the response
// against a prefix-anchored regular expression.
type udpRequestProbe struct {
	addr       string
	request    []byte
	response   *anchoredMatcher
	maxRespLen int
}

func buildUDPRequest(node *yaml.Node) (Probe, error) {
	var p udpRequestParams
	if err := decodeParams(node, &p); err != nil {
		return nil, fmt.Errorf("udp_request: %w", err)
	}
	if p.Host == "" || p.Port == 0 {
		return nil, fmt.Errorf("udp_request: host and port are required")
	}
	if p.Response == "" {
		return nil, fmt.Errorf("udp_request: response pattern is required")
	}
	re, err := anchoredRegexp(p.Response)
	if err != nil {
		return nil, fmt.Errorf("udp_request: %w", err)
	}
	maxLen := p.MaxResponseSize
	if maxLen <= 0 {
		maxLen = 1024
	}
	return &udpRequestProbe{
		addr:       net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		request:    []byte(p.Request),
		response:   re,
		maxRespLen: maxLen,
	}, nil
}

func (p *udpRequestProbe) Execute(ctx context.Context) (string, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "udp", p.addr)
	if err != nil {
		return "", fmt.Errorf("connect %s: %w", p.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write(p.request); err != nil {
		return "", fmt.Errorf("send %s: %w", p.addr, err)
	}

	buf := make([]byte, p.maxRespLen)
	n, err := conn.Read(buf)
	if err != nil {
		return "", fmt.Errorf("recv %s: %w", p.addr, err)
	}

	response := strings.TrimRight(string(buf[:n]), " \t\r\n")
	if !p.response.MatchString(response) {
		return "", fmt.Errorf("response %q did not match pattern", response)
	}
	return response, nil
}
