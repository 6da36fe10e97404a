package mcp

import (
	"testing"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lcr/internal/ops"
)

func TestCreateJSONResponse(t *testing.T) {
	result, err := createJSONResponse(map[string]any{"success": true, "snapshot": 3})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*gomcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"success":true`)
	assert.Contains(t, text.Text, `"snapshot":3`)
}

func TestCreateJSONResponseUnmarshalable(t *testing.T) {
	_, err := createJSONResponse(map[string]any{"bad": func() {}})
	assert.Error(t, err)
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer(ops.NewEngine(nil))
	require.NotNil(t, s)
	require.NotNil(t, s.server)
}
