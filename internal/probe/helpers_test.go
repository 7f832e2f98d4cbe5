package probe

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// encodeNode marshals v to YAML and decodes it back into a *yaml.Node, the
// same shape config.buildCheck hands to a Builder.
func encodeNode(t *testing.T, v any) *yaml.Node {
	t.Helper()
	data, err := yaml.Marshal(v)
	require.NoError(t, err)

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal(data, &node))
	require.Len(t, node.Content, 1)
	return node.Content[0]
}
