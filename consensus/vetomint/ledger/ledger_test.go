package ledger

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func addr(b byte) common.Address {
	var a common.Address
	a[19] = b
	return a
}

func TestNewRejectsEmptySet(t *testing.T) {
	_, err := New(nil, nil)
	require.ErrorIs(t, err, ErrEmptyValidatorSet)
}

func TestNewRejectsNonPositivePower(t *testing.T) {
	_, err := New([]Validator{{Address: addr(1), Power: 0}}, nil)
	require.ErrorIs(t, err, ErrNonPositivePower)
}

func TestThresholds(t *testing.T) {
	l, err := New([]Validator{
		{Address: addr(1), Power: 1},
		{Address: addr(2), Power: 1},
		{Address: addr(3), Power: 1},
		{Address: addr(4), Power: 1},
	}, nil)
	require.NoError(t, err)
	require.EqualValues(t, 4, l.Total())

	th := l.Thresholds()
	require.EqualValues(t, 3, th.TwoThirds)
	require.EqualValues(t, 4, th.FiveSixths)
	require.EqualValues(t, 0, th.F16)
	require.EqualValues(t, 1, th.F13)
}

func TestProposerExplicitScheduleThenRoundRobin(t *testing.T) {
	a, b, c := addr(1), addr(2), addr(3)
	l, err := New([]Validator{
		{Address: a, Power: 1},
		{Address: b, Power: 1},
		{Address: c, Power: 1},
	}, []common.Address{b, c})
	require.NoError(t, err)

	require.Equal(t, b, l.Proposer(0))
	require.Equal(t, c, l.Proposer(1))

	// Past the explicit schedule, proposer selection falls back to the
	// weighted round-robin ordered by address: a < b < c.
	require.Equal(t, a, l.Proposer(2))
	require.Equal(t, b, l.Proposer(3))
	require.Equal(t, c, l.Proposer(4))
	require.Equal(t, a, l.Proposer(5))
}

func TestProposerWeightedRoundRobin(t *testing.T) {
	a, b := addr(1), addr(2)
	l, err := New([]Validator{
		{Address: a, Power: 2},
		{Address: b, Power: 1},
	}, nil)
	require.NoError(t, err)

	// a < b by address, a appears twice, b once: a, a, b, a, a, b, ...
	got := []common.Address{l.Proposer(0), l.Proposer(1), l.Proposer(2), l.Proposer(3)}
	require.Equal(t, []common.Address{a, a, b, a}, got)
}

func TestProposerIsDeterministicAcrossCalls(t *testing.T) {
	l, err := New([]Validator{{Address: addr(1), Power: 1}, {Address: addr(2), Power: 1}}, nil)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.Equal(t, l.Proposer(7), l.Proposer(7))
	}
}

func TestValidatorsSortedByAddress(t *testing.T) {
	a, b, c := addr(3), addr(1), addr(2)
	l, err := New([]Validator{{Address: a, Power: 1}, {Address: b, Power: 1}, {Address: c, Power: 1}}, nil)
	require.NoError(t, err)
	vs := l.Validators()
	require.Len(t, vs, 3)
	require.True(t, vs[0].Address == addr(1))
	require.True(t, vs[1].Address == addr(2))
	require.True(t, vs[2].Address == addr(3))
}
