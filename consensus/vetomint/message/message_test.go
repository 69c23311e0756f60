package message

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"
)

func TestProposalRLPRoundTripFreshProposal(t *testing.T) {
	p := &Proposal{
		Height:     42,
		Round:      3,
		Block:      common.HexToHash("0xbeef"),
		ValidRound: NoValidRound,
		Proposer:   common.HexToAddress("0xaaaa"),
	}
	data, err := rlp.EncodeToBytes(p)
	require.NoError(t, err)

	var got Proposal
	require.NoError(t, rlp.DecodeBytes(data, &got))
	require.Equal(t, *p, got)
}

func TestProposalRLPRoundTripReproposal(t *testing.T) {
	p := &Proposal{
		Height:     42,
		Round:      5,
		Block:      common.HexToHash("0xbeef"),
		ValidRound: 2,
		Proposer:   common.HexToAddress("0xaaaa"),
	}
	data, err := rlp.EncodeToBytes(p)
	require.NoError(t, err)

	var got Proposal
	require.NoError(t, rlp.DecodeBytes(data, &got))
	require.Equal(t, *p, got)
}

func TestProposalDecodeRejectsInconsistentValidRoundFlag(t *testing.T) {
	bad := rlpProposal{Height: 1, Round: 0, IsValidRoundNil: true, ValidRound: 7}
	data, err := rlp.EncodeToBytes(&bad)
	require.NoError(t, err)

	var got Proposal
	err = rlp.DecodeBytes(data, &got)
	require.ErrorIs(t, err, errBadProposalValidRnd)
}

func TestVoteRLPRoundTrip(t *testing.T) {
	v := &Vote{
		Kind:   Precommit,
		Height: 9,
		Round:  1,
		Block:  common.HexToHash("0xcafe"),
		Signer: common.HexToAddress("0xbbbb"),
	}
	data, err := rlp.EncodeToBytes(v)
	require.NoError(t, err)

	var got Vote
	require.NoError(t, rlp.DecodeBytes(data, &got))
	require.Equal(t, *v, got)
}

func TestVoteDecodeRejectsUnknownKind(t *testing.T) {
	bad := rlpVote{Kind: 7, Height: 1, Round: 0}
	data, err := rlp.EncodeToBytes(&bad)
	require.NoError(t, err)

	var got Vote
	err = rlp.DecodeBytes(data, &got)
	require.ErrorIs(t, err, errInvalidMessage)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "prevote", Prevote.String())
	require.Equal(t, "precommit", Precommit.String())
}
