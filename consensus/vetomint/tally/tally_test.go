package tally

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/autonity/vetomint/consensus/vetomint/ledger"
	"github.com/autonity/vetomint/consensus/vetomint/message"
)

func fourValidators(t *testing.T) (*ledger.Ledger, [4]common.Address) {
	t.Helper()
	var addrs [4]common.Address
	for i := range addrs {
		addrs[i][19] = byte(i + 1)
	}
	l, err := ledger.New([]ledger.Validator{
		{Address: addrs[0], Power: 1},
		{Address: addrs[1], Power: 1},
		{Address: addrs[2], Power: 1},
		{Address: addrs[3], Power: 1},
	}, nil)
	require.NoError(t, err)
	return l, addrs
}

func TestAddAcceptsAndRejectsUnknownSigner(t *testing.T) {
	l, addrs := fourValidators(t)
	ta := New(l)

	outcome, _ := ta.Add(addrs[0], common.HexToHash("0x1"))
	require.Equal(t, Accepted, outcome)

	var stranger common.Address
	stranger[19] = 99
	outcome, _ = ta.Add(stranger, common.HexToHash("0x1"))
	require.Equal(t, UnknownSigner, outcome)
}

func TestAddDetectsDuplicateAndEquivocation(t *testing.T) {
	l, addrs := fourValidators(t)
	ta := New(l)

	block := common.HexToHash("0x1")
	outcome, _ := ta.Add(addrs[0], block)
	require.Equal(t, Accepted, outcome)

	outcome, _ = ta.Add(addrs[0], block)
	require.Equal(t, Duplicate, outcome)

	outcome, prior := ta.Add(addrs[0], common.HexToHash("0x2"))
	require.Equal(t, Equivocation, outcome)
	require.Equal(t, block, prior)

	// The equivocating signer's weight still counts only once, for its first
	// observed block (§4.2 "first observation stands").
	require.EqualValues(t, 1, ta.SumFor(block))
	require.EqualValues(t, 0, ta.SumFor(common.HexToHash("0x2")))
}

func TestThresholdPredicates(t *testing.T) {
	l, addrs := fourValidators(t)
	ta := New(l)
	block := common.HexToHash("0x1")

	for _, a := range addrs[:2] {
		outcome, _ := ta.Add(a, block)
		require.Equal(t, Accepted, outcome)
	}
	require.False(t, ta.HasTwoThirdsFor(block))
	require.False(t, ta.HasTwoThirdsAny())

	outcome, _ := ta.Add(addrs[2], block)
	require.Equal(t, Accepted, outcome)
	require.True(t, ta.HasTwoThirdsFor(block))
	require.True(t, ta.HasTwoThirdsAny())
	require.False(t, ta.HasFiveSixthsAny())

	outcome, _ = ta.Add(addrs[3], block)
	require.Equal(t, Accepted, outcome)
	require.True(t, ta.HasFiveSixthsAny())
}

func TestBestCandidateTiesBrokenLexicographically(t *testing.T) {
	l, addrs := fourValidators(t)
	ta := New(l)

	low := common.HexToHash("0x01")
	high := common.HexToHash("0xff")

	_, _ = ta.Add(addrs[0], high)
	_, _ = ta.Add(addrs[1], low)

	best, ok := ta.BestCandidate()
	require.True(t, ok)
	require.Equal(t, low, best)
}

func TestBestCandidateIgnoresNil(t *testing.T) {
	l, addrs := fourValidators(t)
	ta := New(l)
	_, _ = ta.Add(addrs[0], message.NilValue)
	_, ok := ta.BestCandidate()
	require.False(t, ok)
}

func TestSignersSortedByAddress(t *testing.T) {
	l, addrs := fourValidators(t)
	ta := New(l)
	block := common.HexToHash("0x1")
	_, _ = ta.Add(addrs[3], block)
	_, _ = ta.Add(addrs[0], block)
	_, _ = ta.Add(addrs[2], block)

	signers := ta.Signers(block)
	require.Equal(t, []common.Address{addrs[0], addrs[2], addrs[3]}, signers)
}
