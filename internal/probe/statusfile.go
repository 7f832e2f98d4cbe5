package probe

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

func init() {
	Register("status_file", buildStatusFile)
}

type statusFileParams struct {
	StatusFile    string `yaml:"status_file"`
	StatusFileTTL int    `yaml:"status_file_ttl"`
	ErrorString   string `yaml:"error_string"`
	SuccessString string `yaml:"success_string"`
}

// statusFileProbe validates an externally-maintained status file: its
// freshness, the absence of an error marker, and the presence of a
// success marker.
type statusFileProbe struct {
	path          string
	ttl           time.Duration
	errorString   string
	successString string
}

func buildStatusFile(node *yaml.Node) (Probe, error) {
	var p statusFileParams
	if err := decodeParams(node, &p); err != nil {
		return nil, fmt.Errorf("status_file: %w", err)
	}
	if p.StatusFile == "" {
		return nil, fmt.Errorf("status_file: status_file is required")
	}
	var ttl time.Duration
	if p.StatusFileTTL > 0 {
		ttl = time.Duration(p.StatusFileTTL) * time.Second
	}
	return &statusFileProbe{
		path:          p.StatusFile,
		ttl:           ttl,
		errorString:   p.ErrorString,
		successString: p.SuccessString,
	}, nil
}

func (p *statusFileProbe) Execute(ctx context.Context) (string, error) {
	info, err := os.Stat(p.path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", p.path, err)
	}
	if p.ttl > 0 && time.Since(info.ModTime()) > p.ttl {
		return "", fmt.Errorf("%s: stale, last modified %s ago", p.path, time.Since(info.ModTime()).Round(time.Second))
	}

	f, err := os.Open(p.path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", p.path, err)
	}
	defer f.Close()

	successFound := p.successString == ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if p.errorString != "" && strings.Contains(line, p.errorString) {
			return "", fmt.Errorf("%s: contains error string %q", p.path, p.errorString)
		}
		if p.successString != "" && strings.Contains(line, p.successString) {
			successFound = true
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", p.path, err)
	}
	if !successFound {
		return "", fmt.Errorf("%s: missing required success string %q", p.path, p.successString)
	}
	return "", nil
}
