package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"
)

func init() {
	Register("url", buildURL)
}

type urlParams struct {
	URL                string `yaml:"url"`
	Response           string `yaml:"response"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// urlProbe performs an HTTP GET and checks the response body against a
// prefix-anchored regular expression.
type urlProbe struct {
	url      string
	response *anchoredMatcher
	client   *http.Client
}

func buildURL(node *yaml.Node) (Probe, error) {
	var p urlParams
	if err := decodeParams(node, &p); err != nil {
		return nil, fmt.Errorf("url: %w", err)
	}
	if p.URL == "" {
		return nil, fmt.Errorf("url: url is required")
	}
	if p.Response == "" {
		return nil, fmt.Errorf("url: response pattern is required")
	}
	re, err := anchoredRegexp(p.Response)
	if err != nil {
		return nil, fmt.Errorf("url: %w", err)
	}
	transport := &http.Transport{}
	if p.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &urlProbe{
		url:      p.URL,
		response: re,
		client:   &http.Client{Transport: transport},
	}, nil
}

func (p *urlProbe) Execute(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", p.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("GET %s: status %d", p.url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("GET %s: read body: %w", p.url, err)
	}

	trimmed := strings.TrimRight(string(body), " \t\r\n")
	if !p.response.MatchString(trimmed) {
		return "", fmt.Errorf("response did not match pattern")
	}
	return trimmed, nil
}
