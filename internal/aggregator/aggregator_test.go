package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rscheck/rscheck/internal/config"
	"github.com/rscheck/rscheck/internal/model"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	return New(nil, 10*time.Second, time.Second, true, nil)
}

func TestSnapshotAllHealthyNoMessage(t *testing.T) {
	a := New([]config.CheckSpec{{Name: "a"}, {Name: "b"}}, 10*time.Second, time.Second, true, nil)
	healthy, message := a.Snapshot("", nil)
	assert.True(t, healthy)
	assert.Equal(t, "true", message)
}

func TestSnapshotOneErrorCheckCarriesItsMessage(t *testing.T) {
	a := New([]config.CheckSpec{{Name: "a"}, {Name: "b"}}, 10*time.Second, time.Second, true, nil)
	aggStore(a).Update("b", model.Err("b: connection refused"))

	healthy, message := a.Snapshot("", nil)
	assert.False(t, healthy)
	assert.Equal(t, "b: connection refused", message)
}

func TestSnapshotExcludesNamedChecks(t *testing.T) {
	a := New([]config.CheckSpec{{Name: "a"}, {Name: "b"}}, 10*time.Second, time.Second, true, nil)
	aggStore(a).Update("b", model.Err("b failed"))

	healthy, message := a.Snapshot("", map[string]struct{}{"b": {}})
	assert.True(t, healthy)
	assert.Equal(t, "true", message)
}

func TestSnapshotIncludesStatusMessageOnSuccess(t *testing.T) {
	a := New([]config.CheckSpec{{Name: "a"}}, 10*time.Second, time.Second, true, nil)
	aggStore(a).Update("a", model.OK("replication lag 0s"))

	healthy, message := a.Snapshot("", nil)
	assert.True(t, healthy)
	assert.Equal(t, "replication lag 0s", message)
}

func TestEvaluateQueryRejectsUnrecognizedArg(t *testing.T) {
	a := newTestAggregator(t)
	outcome := a.RunQuery("weird=1", model.QueryArgs{{Name: "weird", Value: "1"}})
	assert.False(t, outcome.Healthy())
}

func TestEvaluateQueryRequiresBothVirtualArgs(t *testing.T) {
	a := newTestAggregator(t)
	outcome := a.RunQuery("virtual_if=eth1", model.QueryArgs{{Name: model.ArgVirtualIf, Value: "eth1"}})
	assert.False(t, outcome.Healthy())
}

func TestEvaluateQueryNoArgsIsHealthy(t *testing.T) {
	a := newTestAggregator(t)
	outcome := a.RunQuery("", nil)
	assert.True(t, outcome.Healthy())
}

func TestRunQueryIsCached(t *testing.T) {
	a := newTestAggregator(t)
	first := a.RunQuery("virtual_if=eth1", model.QueryArgs{
		{Name: model.ArgVirtualIf, Value: "eth1"},
		{Name: model.ArgVirtualIP, Value: "10.0.0.1"},
	})
	second := a.RunQuery("virtual_if=eth1", model.QueryArgs{
		{Name: model.ArgVirtualIf, Value: "eth1"},
		{Name: model.ArgVirtualIP, Value: "10.0.0.1"},
	})
	assert.Equal(t, first.Timestamp, second.Timestamp, "second call should hit the cache, not re-evaluate")
}

func TestAllHealthyReflectsSnapshot(t *testing.T) {
	a := New([]config.CheckSpec{{Name: "a"}}, 10*time.Second, time.Second, true, nil)
	assert.True(t, a.AllHealthy("", nil))

	aggStore(a).Update("a", model.Err("down"))
	assert.False(t, a.AllHealthy("", nil))
}

// aggStore reaches into the Aggregator's private store for test setup; the
// Aggregator itself never exposes direct outcome injection, only
// CheckRunners do via Update.
func aggStore(a *Aggregator) interface {
	Update(name string, outcome model.Outcome)
} {
	return a.store
}
