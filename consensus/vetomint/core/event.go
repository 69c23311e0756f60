package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/autonity/vetomint/consensus/vetomint/config"
	"github.com/autonity/vetomint/consensus/vetomint/ledger"
	"github.com/autonity/vetomint/consensus/vetomint/message"
)

// Event is an inbound occurrence fed to Dispatcher.Step (§6). All concrete
// event types below implement it; the interface exists only to let Step take
// a single typed argument in the Go idiom (accept an interface), mirroring
// how the teacher dispatches on message.Code/event type in handler.go.
type Event interface {
	isEvent()
}

// Start carries the parameters for constructing a height's Height Driver
// (§6). It is passed to NewDispatcher (or NewDispatcherSync,
// Manager.StartHeight); a Start later delivered to Step is ignored.
type Start struct {
	Height uint64
	Ledger *ledger.Ledger
	Config config.Config
	// Local is this process's own validator identity, or nil if the
	// Dispatcher is only observing (not participating in) this height.
	Local *common.Address
}

// ProposalReceived carries a proposal already checked by the caller for
// signature validity and, in a separate flag, body (block) validity (§6).
type ProposalReceived struct {
	Proposal    message.Proposal
	SignatureOK bool
	BodyValid   bool
}

// PrevoteReceived and PrecommitReceived carry a vote already checked by the
// caller for signature validity (§6). The vote kind is taken from the event
// type; Vote.Kind is not consulted.
type PrevoteReceived struct {
	Vote        message.Vote
	SignatureOK bool
}

type PrecommitReceived struct {
	Vote        message.Vote
	SignatureOK bool
}

// LocalBlockReady is the response to a prior RequestBlockCandidate action
// (§6): the external block-source collaborator has produced a fresh
// candidate for this validator to propose.
type LocalBlockReady struct {
	Round int64
	Block common.Hash
}

// TimerFired reports that a previously started timer has elapsed (§6). A
// TimerFired whose ID does not match a currently scheduled timer of that
// round/kind is a no-op (§5 cancellation semantics).
type TimerFired struct {
	TimerID uuid.UUID
	Round   int64
	Kind    TimerKind
}

// OperatorVeto is the local-operator displacement signal (§6, §4.3): it
// flips this validator's next prevote in Round from B to nil, if that
// prevote has not already been cast.
type OperatorVeto struct {
	Round int64
}

func (Start) isEvent()             {}
func (ProposalReceived) isEvent()  {}
func (PrevoteReceived) isEvent()   {}
func (PrecommitReceived) isEvent() {}
func (LocalBlockReady) isEvent()   {}
func (TimerFired) isEvent()        {}
func (OperatorVeto) isEvent()      {}
