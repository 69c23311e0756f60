package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/autonity/vetomint/consensus/vetomint/ledger"
	"github.com/autonity/vetomint/consensus/vetomint/message"
	"github.com/autonity/vetomint/consensus/vetomint/tally"
)

// roundState is one round's record (§3 RoundState). Kept in a flat map keyed
// by round index on the Height Driver, retained for the lifetime of the
// height (§4.4) — a late vote for round 3 can still move validRound forward
// after the driver has moved on to round 7.
type roundState struct {
	round int64

	proposal *message.Proposal

	prevotes   *tally.Tally
	precommits *tally.Tally

	// rawPrevotes/rawPrecommits retain the actual accepted vote per signer,
	// alongside the tally's weight bookkeeping, so a finalization proof or
	// equivocation evidence can be reconstructed byte-for-byte (SPEC_FULL §13,
	// adapted from accountability.Proof carrying full message.Message values
	// rather than just a flag).
	rawPrevotes   map[common.Address]message.Vote
	rawPrecommits map[common.Address]message.Vote

	step RoundStep

	// Once-only latches guarding timer scheduling, the pure-function
	// equivalent of the teacher's line34Executed/line47Executed flags
	// (SPEC_FULL §13): without them, every additional prevote/precommit
	// received after crossing a threshold would re-emit a StartTimer action.
	prevoteTimeoutScheduled   bool
	precommitTimeoutScheduled bool

	proposeTimerID   uuid.UUID
	prevoteTimerID   uuid.UUID
	precommitTimerID uuid.UUID
}

func newRoundState(round int64, l *ledger.Ledger) *roundState {
	return &roundState{
		round:         round,
		prevotes:      tally.New(l),
		precommits:    tally.New(l),
		rawPrevotes:   make(map[common.Address]message.Vote),
		rawPrecommits: make(map[common.Address]message.Vote),
		step:          AwaitProposal,
	}
}
