package core

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/autonity/vetomint/consensus/vetomint/message"
)

// Action is an outbound instruction returned by Dispatcher.Step, which the
// caller is obligated to execute in order (§5, §6). The interface exists
// only so Step can return a single ordered []Action slice.
type Action interface {
	isAction()
}

// BroadcastProposal asks the caller to gossip a proposal this validator
// just authored.
type BroadcastProposal struct {
	Proposal message.Proposal
}

// BroadcastVote asks the caller to gossip a prevote or precommit this
// validator just cast.
type BroadcastVote struct {
	Vote message.Vote
}

// StartTimer asks the caller to schedule a wall-clock timer; on elapse the
// caller delivers a matching TimerFired event.
type StartTimer struct {
	TimerID  uuid.UUID
	Round    int64
	Kind     TimerKind
	Duration time.Duration
}

// CancelTimer asks the caller to cancel a previously started timer. The
// caller must honor cancellation before scheduling a new timer of the same
// kind in the same round (§5).
type CancelTimer struct {
	TimerID uuid.UUID
}

// RequestBlockCandidate asks the caller's block-source collaborator to
// produce a fresh candidate block for this round; the response arrives as a
// LocalBlockReady event.
type RequestBlockCandidate struct {
	Round int64
}

// RecordEquivocation reports two distinct signed votes the same signer cast
// for the same (kind, height, round) — never fatal, always just evidence
// (§7, §13).
type RecordEquivocation struct {
	Evidence message.Equivocation
}

// Decide reports that this height has been decided. It is terminal: no
// further action is ever emitted for this height after Decide (§3, §4.3).
type Decide struct {
	Height uint64
	Block  common.Hash
	// Proof is the finalization proof: the precommit votes for Block in the
	// deciding round, whose combined weight exceeds 2W/3 (§6).
	Proof []message.Vote
}

// AdvanceRound is an informational action — for loggers and external
// observers — reporting that the Height Driver moved to a new round (§6).
type AdvanceRound struct {
	Round int64
}

func (BroadcastProposal) isAction()     {}
func (BroadcastVote) isAction()         {}
func (StartTimer) isAction()            {}
func (CancelTimer) isAction()           {}
func (RequestBlockCandidate) isAction() {}
func (RecordEquivocation) isAction()    {}
func (Decide) isAction()                {}
func (AdvanceRound) isAction()          {}
