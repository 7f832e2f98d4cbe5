package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rscheck/rscheck/internal/model"
)

func TestParseQueryStringEmpty(t *testing.T) {
	args, err := parseQueryString("")
	require.NoError(t, err)
	assert.Nil(t, args)
}

func TestParseQueryStringBasic(t *testing.T) {
	args, err := parseQueryString("exclude=a,b&virtual_if=eth1")
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, model.QueryArg{Name: "exclude", Value: "a,b"}, args[0])
	assert.Equal(t, model.QueryArg{Name: "virtual_if", Value: "eth1"}, args[1])
}

func TestParseQueryStringFirstSeenWins(t *testing.T) {
	args, err := parseQueryString("virtual_if=eth0&virtual_if=eth1")
	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.Equal(t, "eth0", args[0].Value)
}

func TestParseQueryStringMalformedPair(t *testing.T) {
	_, err := parseQueryString("novalue")
	assert.Error(t, err)
}

func TestParseQueryStringMalformedSegment(t *testing.T) {
	_, err := parseQueryString("a=1&&b=2")
	assert.Error(t, err)
}

func TestParseQueryStringDecodesEscapes(t *testing.T) {
	args, err := parseQueryString("virtual_ip=10.0.0.1%2C10.0.0.2")
	require.NoError(t, err)
	require.Len(t, args, 1)
	assert.Equal(t, "10.0.0.1,10.0.0.2", args[0].Value)
}

func TestExcludeSetSplitsCommaSeparatedNames(t *testing.T) {
	set := excludeSet(model.QueryArgs{
		{Name: model.ArgExclude, Value: "a,b"},
		{Name: model.ArgVirtualIf, Value: "eth0"},
	})
	assert.Contains(t, set, "a")
	assert.Contains(t, set, "b")
	assert.Len(t, set, 2)
}
