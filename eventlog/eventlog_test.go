package eventlog

import (
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/autonity/vetomint/consensus/vetomint/core"
	"github.com/autonity/vetomint/consensus/vetomint/message"
)

func TestAppendAndReplayAllPreservesOrderAndContent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	l, err := Open(dir)
	require.NoError(t, err)

	want := []core.Event{
		core.ProposalReceived{
			Proposal:    message.Proposal{Height: 1, Round: 0, Block: common.HexToHash("0xb1"), ValidRound: message.NoValidRound, Proposer: common.HexToAddress("0xaa")},
			SignatureOK: true,
			BodyValid:   true,
		},
		core.PrevoteReceived{
			Vote:        message.Vote{Kind: message.Prevote, Height: 1, Round: 0, Block: common.HexToHash("0xb1"), Signer: common.HexToAddress("0xbb")},
			SignatureOK: true,
		},
		core.TimerFired{TimerID: uuid.New(), Round: 0, Kind: core.KindPrevote},
		core.OperatorVeto{Round: 2},
		core.LocalBlockReady{Round: 1, Block: common.HexToHash("0xc3")},
	}

	for _, ev := range want {
		require.NoError(t, l.Append(ev))
	}
	require.NoError(t, l.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	var got []core.Event
	err = reopened.ReplayAll(func(ev core.Event) error {
		got = append(got, ev)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestAppendAfterReopenContinuesSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	l, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, l.Append(core.OperatorVeto{Round: 0}))
	require.NoError(t, l.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, reopened.Append(core.OperatorVeto{Round: 1}))
	require.NoError(t, reopened.Close())

	final, err := Open(dir)
	require.NoError(t, err)
	defer final.Close()

	var rounds []int64
	err = final.ReplayAll(func(ev core.Event) error {
		rounds = append(rounds, ev.(core.OperatorVeto).Round)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int64{0, 1}, rounds)
}
