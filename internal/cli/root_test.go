package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gelato/internal/ir"
)

const (
	testConfig     = "testdata/gelato.yaml"
	definitionsDir = "testdata/definitions"
	invalidDir     = "testdata/invalid"
)

// scenarioADefinition is testutil.ScenarioA written as a CUE definition.
const scenarioADefinition = `package receipts

receipt: minimal: {
	userProxy: "0xAA"
	task: base: {
		provider: {addr: "0xBB", module: "0x0"}
		actions: [{addr: "0xCC", data: "0x", operation: 0, value: 0, termsOkCheck: false}]
	}
}
`

// executeRoot runs the full command tree with args and returns stdout.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeDefinitions writes src as the only CUE file of a fresh directory.
func writeDefinitions(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "receipts.cue"), []byte(src), 0o644))
	return dir
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "gelato", cmd.Use)
	assert.Contains(t, cmd.Long, "positional array")
}

func TestVersionFlag(t *testing.T) {
	out, err := executeRoot(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "gelato version "+ir.ToolVersion)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "validate", "record", "list", "resolve"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)

	networkFlag := cmd.PersistentFlags().Lookup("network")
	require.NotNil(t, networkFlag)
	assert.Equal(t, "", networkFlag.DefValue)
}

func TestCompileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	compileCmd, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)

	outputFlag := compileCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestDatabaseFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"record", "list"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)

			dbFlag := sub.Flags().Lookup("db")
			require.NotNil(t, dbFlag)
			assert.Equal(t, "", dbFlag.DefValue)
		})
	}

	listCmd, _, err := cmd.Find([]string{"list"})
	require.NoError(t, err)
	assert.NotNil(t, listCmd.Flags().Lookup("all"))
	assert.NotNil(t, listCmd.Flags().Lookup("batch"))
	assert.NotNil(t, listCmd.Flags().Lookup("proxy"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := executeRoot(t, "--format", "yaml", "validate", definitionsDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestVerboseLogsToStderr(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs([]string{"--verbose", "--config", testConfig, "validate", definitionsDir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "✓ All task receipts valid")
	assert.NotContains(t, out.String(), "Validating receipt")
	assert.Contains(t, errOut.String(), "Using network kovan (chain 42)")
	assert.Contains(t, errOut.String(), "Validating receipt: rebalance")
}

func TestSelectNetwork(t *testing.T) {
	t.Run("default network from config", func(t *testing.T) {
		opts := &RootOptions{Config: testConfig}
		name, n, err := opts.selectNetwork()
		require.NoError(t, err)
		assert.Equal(t, "kovan", name)
		require.NotNil(t, n)
		assert.Equal(t, uint64(42), n.ChainID)
	})

	t.Run("named network", func(t *testing.T) {
		opts := &RootOptions{Config: testConfig, Network: "localhost"}
		name, n, err := opts.selectNetwork()
		require.NoError(t, err)
		assert.Equal(t, "localhost", name)
		assert.Equal(t, uint64(31337), n.ChainID)
	})

	t.Run("no config file", func(t *testing.T) {
		opts := &RootOptions{Network: "kovan"}
		name, n, err := opts.selectNetwork()
		require.NoError(t, err)
		assert.Equal(t, "kovan", name)
		assert.Nil(t, n)
	})

	t.Run("missing explicit config", func(t *testing.T) {
		opts := &RootOptions{Config: filepath.Join(t.TempDir(), "absent.yaml")}
		_, _, err := opts.selectNetwork()
		require.Error(t, err)
	})
}
