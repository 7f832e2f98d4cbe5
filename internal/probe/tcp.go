package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"

	"gopkg.in/yaml.v3"
)

func init() {
	Register("tcp", buildTCP)
}

type tcpParams struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	UseSSL        bool   `yaml:"use_ssl"`
	TLSSkipVerify bool   `yaml:"tls_skip_verify"`
}

// tcpProbe dials (host, port) and, if configured, completes a TLS
// handshake on top of the connection.
type tcpProbe struct {
	addr       string
	useSSL     bool
	skipVerify bool
	serverName string
}

func buildTCP(node *yaml.Node) (Probe, error) {
	var p tcpParams
	if err := decodeParams(node, &p); err != nil {
		return nil, fmt.Errorf("tcp: %w", err)
	}
	if p.Host == "" || p.Port == 0 {
		return nil, fmt.Errorf("tcp: host and port are required")
	}
	return &tcpProbe{
		addr:       net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		useSSL:     p.UseSSL,
		skipVerify: p.TLSSkipVerify,
		serverName: p.Host,
	}, nil
}

func (p *tcpProbe) Execute(ctx context.Context) (string, error) {
	var dialer net.Dialer
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}

	conn, err := dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return "", fmt.Errorf("connect %s: %w", p.addr, err)
	}
	defer conn.Close()

	if !p.useSSL {
		return "", nil
	}

	tlsConn := tls.Client(conn, &tls.Config{
		ServerName:         p.serverName,
		InsecureSkipVerify: p.skipVerify,
	})
	defer tlsConn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = tlsConn.SetDeadline(deadline)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return "", fmt.Errorf("tls handshake %s: %w", p.addr, err)
	}
	return "", nil
}
