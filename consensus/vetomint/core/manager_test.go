package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/autonity/vetomint/consensus/vetomint/config"
)

func TestManagerRoutesToCorrectHeightAndEvicts(t *testing.T) {
	l, _, _, _, _ := fourValidatorLedger(t)

	m, err := NewManager(2)
	require.NoError(t, err)

	m.StartHeight(Start{Height: 1, Ledger: l, Config: config.Default})
	m.StartHeight(Start{Height: 2, Ledger: l, Config: config.Default})
	require.Equal(t, 2, m.Len())

	// Starting a third height beyond capacity evicts the least-recently-used
	// one (height 1, untouched since StartHeight).
	m.StartHeight(Start{Height: 3, Ledger: l, Config: config.Default})
	require.Equal(t, 2, m.Len())

	_, ok := m.Step(1, OperatorVeto{Round: 0})
	require.False(t, ok)

	_, ok = m.Step(3, OperatorVeto{Round: 0})
	require.True(t, ok)
}

func TestManagerForget(t *testing.T) {
	l, _, _, _, _ := fourValidatorLedger(t)
	m, err := NewManager(4)
	require.NoError(t, err)

	m.StartHeight(Start{Height: 1, Ledger: l, Config: config.Default})
	require.Equal(t, 1, m.Len())
	m.Forget(1)
	require.Equal(t, 0, m.Len())

	_, ok := m.Step(1, OperatorVeto{Round: 0})
	require.False(t, ok)
}
