package core

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/autonity/vetomint/consensus/vetomint/config"
)

func TestNewDispatcherSyncAnswersBlockRequestAndProposes(t *testing.T) {
	l, _, _, _, _ := fourValidatorLedger(t)
	local := l.Proposer(0)

	ctrl := gomock.NewController(t)
	source := NewMockBlockSource(ctrl)
	block := common.HexToHash("0xfeed")
	source.EXPECT().CandidateBlock(int64(0)).Return(block, nil)

	_, out, err := NewDispatcherSync(Start{Height: 1, Ledger: l, Config: config.Default, Local: &local}, source)
	require.NoError(t, err)

	found := false
	for _, act := range out {
		if bp, ok := act.(BroadcastProposal); ok {
			require.Equal(t, block, bp.Proposal.Block)
			found = true
		}
	}
	require.True(t, found)
}

func TestDriveSyncNoOpWhenNoBlockRequested(t *testing.T) {
	l, a, b, c, _ := fourValidatorLedger(t)
	notProposer := l.Proposer(0)
	for _, cand := range []common.Address{a, b, c} {
		if cand != notProposer {
			notProposer = cand
			break
		}
	}

	ctrl := gomock.NewController(t)
	source := NewMockBlockSource(ctrl)
	// notProposer never becomes local proposer for round 0, so no
	// RequestBlockCandidate is ever emitted and CandidateBlock is never
	// called — DriveSync must still complete cleanly.
	d, _ := NewDispatcher(Start{Height: 1, Ledger: l, Config: config.Default, Local: &notProposer})
	_, err := DriveSync(d, source, OperatorVeto{Round: 0})
	require.NoError(t, err)
}
