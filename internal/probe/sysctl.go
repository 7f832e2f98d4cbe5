package probe

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

func init() {
	Register("sysctl", buildSysctl)
}

type sysctlVariable struct {
	Variable string `yaml:"variable"`
	Expected string `yaml:"expected"`
}

type sysctlParams struct {
	Variables []sysctlVariable `yaml:"variables"`
}

// sysctlProbe checks a set of /proc/sys values against expected strings.
// A missing file or read failure reads as the empty string, which can
// only equal an expected value of "" and never falsely matches a
// non-empty one.
type sysctlProbe struct {
	variables []sysctlVariable
}

func buildSysctl(node *yaml.Node) (Probe, error) {
	var p sysctlParams
	if err := decodeParams(node, &p); err != nil {
		return nil, fmt.Errorf("sysctl: %w", err)
	}
	if len(p.Variables) == 0 {
		return nil, fmt.Errorf("sysctl: variables is required")
	}
	return &sysctlProbe{variables: p.Variables}, nil
}

func (p *sysctlProbe) Execute(ctx context.Context) (string, error) {
	for _, v := range p.variables {
		actual := ReadSysctl(v.Variable)
		if actual != v.Expected {
			return "", fmt.Errorf("%s: got %q, want %q", v.Variable, actual, v.Expected)
		}
	}
	return "", nil
}

// sysctlPath converts the dotted sysctl name ("net.ipv4.ip_forward") into
// its /proc/sys path ("net/ipv4/ip_forward").
func sysctlPath(variable string) string {
	return "/proc/sys/" + strings.ReplaceAll(variable, ".", "/")
}

// ReadSysctl returns the trimmed contents of the sysctl file, or "" if it
// could not be read. Exported for the Aggregator's virtual interface
// query, which checks net.ipv4.conf.<if>.rp_filter.
func ReadSysctl(variable string) string {
	data, err := os.ReadFile(sysctlPath(variable))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
