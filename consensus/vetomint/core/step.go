// Package core implements the Round State Machine and Height Driver (§4.3,
// §4.4): the per-round finite-state control and the outer loop across
// rounds, exposed as a single pure entry point, Dispatcher.Step, per §2 and
// §5. Grounded on consensus/tendermint/core/handler.go's checkUponConditions
// (the upon-condition dispatch shape) generalized from a single mutable
// `core` struct driving one live round into a map of retained RoundStates
// driving a height, as required by §4.4's "retain all prior round records".
package core

import "fmt"

// RoundStep is the per-round finite-state control point (§3 RoundState.step).
type RoundStep uint8

const (
	AwaitProposal RoundStep = iota
	Prevoted
	Precommitted
	Decided
)

func (s RoundStep) String() string {
	switch s {
	case AwaitProposal:
		return "AwaitProposal"
	case Prevoted:
		return "Prevoted"
	case Precommitted:
		return "Precommitted"
	case Decided:
		return "Decided"
	default:
		panic(fmt.Sprintf("vetomint: unrecognised round step %d", s))
	}
}

// atLeast reports whether s has progressed to or past other in the
// AwaitProposal < Prevoted < Precommitted < Decided order.
func (s RoundStep) atLeast(other RoundStep) bool {
	return s >= other
}

// TimerKind distinguishes the three timeout families a round can schedule
// (§3 RoundState.timeoutScheduled).
type TimerKind uint8

const (
	KindPropose TimerKind = iota
	KindPrevote
	KindPrecommit
)

func (k TimerKind) String() string {
	switch k {
	case KindPropose:
		return "propose"
	case KindPrevote:
		return "prevote"
	case KindPrecommit:
		return "precommit"
	default:
		panic(fmt.Sprintf("vetomint: unrecognised timer kind %d", k))
	}
}
