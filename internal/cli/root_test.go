package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ledgerctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"seed"}, {"stock"}, {"availability"}, {"adjust"}, {"history"},
		{"low-stock"}, {"reconcile"}, {"stock-card"}, {"user", "add"}, {"token"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	actorFlag := cmd.PersistentFlags().Lookup("actor")
	require.NotNil(t, actorFlag)
	assert.Equal(t, "ledgerctl", actorFlag.DefValue)

	for _, name := range []string{"api-url", "token", "sqlite", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestHistoryFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	assert.Equal(t, "20", historyCmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, "0", historyCmd.Flags().Lookup("offset").DefValue)
}
