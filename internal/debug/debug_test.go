package debug

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// saveAndRestoreState captures debug globals and returns a restore func.
func saveAndRestoreState() func() {
	origEnable := EnableDebug
	origMCP := MCPMode
	origEnv := os.Getenv("DEBUG")
	return func() {
		EnableDebug = origEnable
		MCPMode = origMCP
		os.Setenv("DEBUG", origEnv)
		SetDebugOutput(nil)
	}
}

func TestIsDebugEnabled(t *testing.T) {
	defer saveAndRestoreState()()

	EnableDebug = "false"
	MCPMode = false
	os.Setenv("DEBUG", "")
	assert.False(t, IsDebugEnabled())

	EnableDebug = "true"
	assert.True(t, IsDebugEnabled())

	// MCP mode suppresses debug regardless of flags
	MCPMode = true
	assert.False(t, IsDebugEnabled())

	MCPMode = false
	EnableDebug = "false"
	os.Setenv("DEBUG", "1")
	assert.True(t, IsDebugEnabled())
}

func TestPrintfWritesToConfiguredOutput(t *testing.T) {
	defer saveAndRestoreState()()

	EnableDebug = "true"
	MCPMode = false

	var buf bytes.Buffer
	SetDebugOutput(&buf)

	Printf("hello %s\n", "world")
	assert.Contains(t, buf.String(), "[DEBUG] hello world")
}

func TestPrintfSuppressedWhenDisabled(t *testing.T) {
	defer saveAndRestoreState()()

	EnableDebug = "false"
	MCPMode = false
	os.Setenv("DEBUG", "")

	var buf bytes.Buffer
	SetDebugOutput(&buf)

	Printf("should not appear\n")
	assert.Empty(t, buf.String())
}

func TestLogComponents(t *testing.T) {
	defer saveAndRestoreState()()

	EnableDebug = "true"
	MCPMode = false

	var buf bytes.Buffer
	SetDebugOutput(&buf)

	LogSession("opened %s\n", "/work/project")
	LogCommit("wrote %d files\n", 3)
	LogMCP("tool call %s\n", "rename_symbol")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG:SESSION] opened /work/project")
	assert.Contains(t, out, "[DEBUG:COMMIT] wrote 3 files")
	assert.Contains(t, out, "[DEBUG:MCP] tool call rename_symbol")
}

func TestInitDebugLogFile(t *testing.T) {
	defer saveAndRestoreState()()

	path, err := InitDebugLogFile()
	assert.NoError(t, err)
	assert.True(t, strings.Contains(path, "lcr-debug-logs"))

	defer os.Remove(path)
	assert.NoError(t, CloseDebugLog())

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestFatalReturnsError(t *testing.T) {
	defer saveAndRestoreState()()

	MCPMode = true
	err := Fatal("bad state: %d", 42)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad state: 42")
}
