package probe

import (
	"context"
	"time"

	"github.com/rscheck/rscheck/internal/querycache"
	"gopkg.in/yaml.v3"
)

func init() {
	Register("maintenance", buildMaintenance)
}

// MaintenanceProbe periodically sweeps the query cache of expired
// entries. It never fails and takes no configuration parameters.
//
// Unlike every other variant, it needs a handle to state the Aggregator
// owns (the QueryCache and the process-wide query_cache_ttl), so the
// config loader constructs it via the normal registry but the Aggregator
// must call Bind before the first cycle runs.
type MaintenanceProbe struct {
	cache *querycache.Cache
	ttl   time.Duration
}

func buildMaintenance(node *yaml.Node) (Probe, error) {
	return &MaintenanceProbe{}, nil
}

// Bind attaches the shared query cache and its TTL. Must be called before
// the owning CheckRunner starts its loop.
func (p *MaintenanceProbe) Bind(cache *querycache.Cache, ttl time.Duration) {
	p.cache = cache
	p.ttl = ttl
}

func (p *MaintenanceProbe) Execute(ctx context.Context) (string, error) {
	if p.cache == nil {
		return "", nil
	}
	p.cache.Sweep(p.ttl)
	return "", nil
}
