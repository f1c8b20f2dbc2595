package llm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCost(t *testing.T) {
	require.Equal(t, 0.0, Cost(0, 0))

	// 1M in and 1M out at the published per-million rates.
	require.InDelta(t, 0.75, Cost(1_000_000, 1_000_000), 1e-9)

	// Typical turn: small absolute cost, output weighted 4x.
	require.InDelta(t, 0.000030, Cost(120, 20), 1e-9)
}

func TestNewClientSelectsProvider(t *testing.T) {
	c, err := NewClient(ProviderOpenAI, "sk-test")
	require.NoError(t, err)
	require.Equal(t, "openai", c.Name())

	c, err = NewClient(ProviderAnthropic, "sk-ant-test")
	require.NoError(t, err)
	require.Equal(t, "anthropic", c.Name())

	// Unknown providers fall back to the default.
	c, err = NewClient(Provider("mystery"), "sk-test")
	require.NoError(t, err)
	require.Equal(t, "openai", c.Name())
}
