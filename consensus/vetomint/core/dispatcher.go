package core

import (
	"github.com/ethereum/go-ethereum/common"

	vlog "github.com/autonity/vetomint/consensus/vetomint/log"
)

// Dispatcher is the Event Dispatcher of §2/§6: a thin shell around a single
// height's HeightDriver that adds structured logging around every
// step(event) -> []Action call, exactly as the teacher's core.mainEventLoop
// logs around message handling in consensus/tendermint/core/handler.go. The
// core (HeightDriver) itself stays pure and silent; only this shell talks to
// the logger.
type Dispatcher struct {
	driver *HeightDriver
	logger vlog.Logger
}

// NewDispatcher processes a Start event, constructing the height's driver
// and returning the initial round-0 actions.
func NewDispatcher(ev Start) (*Dispatcher, []Action) {
	logger := vlog.New("height", ev.Height)
	driver, actions := NewHeightDriver(ev.Height, ev.Ledger, ev.Config, ev.Local)
	logger.Info("starting height", "round", 0, "local", localString(ev.Local))
	d := &Dispatcher{driver: driver, logger: logger}
	d.logActions(actions)
	return d, actions
}

func localString(a *common.Address) string {
	if a == nil {
		return "<observer>"
	}
	return a.Hex()
}

// Step logs the inbound event, delegates to the HeightDriver, logs the
// resulting actions, and returns them.
func (d *Dispatcher) Step(ev Event) []Action {
	d.logEvent(ev)
	actions := d.driver.Step(ev)
	d.logActions(actions)
	return actions
}

// Decided reports whether the underlying height has reached a terminal
// decision.
func (d *Dispatcher) Decided() bool {
	return d.driver.Decided()
}

func (d *Dispatcher) logEvent(ev Event) {
	switch e := ev.(type) {
	case ProposalReceived:
		d.logger.Debug("proposal received", "round", e.Proposal.Round, "block", e.Proposal.Block.Hex())
	case PrevoteReceived:
		d.logger.Debug("prevote received", "round", e.Vote.Round, "signer", e.Vote.Signer.Hex())
	case PrecommitReceived:
		d.logger.Debug("precommit received", "round", e.Vote.Round, "signer", e.Vote.Signer.Hex())
	case TimerFired:
		d.logger.Debug("timer fired", "round", e.Round, "kind", e.Kind.String())
	case OperatorVeto:
		d.logger.Warn("operator veto", "round", e.Round)
	case LocalBlockReady:
		d.logger.Debug("local block ready", "round", e.Round, "block", e.Block.Hex())
	}
}

func (d *Dispatcher) logActions(actions []Action) {
	for _, a := range actions {
		switch act := a.(type) {
		case Decide:
			d.logger.Info("decided", "height", act.Height, "block", act.Block.Hex(), "proofSize", len(act.Proof))
		case AdvanceRound:
			d.logger.Info("advancing round", "round", act.Round)
		case RecordEquivocation:
			d.logger.Warn("equivocation detected", "signer", act.Evidence.First.Signer.Hex())
		case BroadcastVote:
			d.logger.Debug("broadcasting vote", "kind", act.Vote.Kind.String(), "round", act.Vote.Round, "block", act.Vote.Block.Hex())
		case BroadcastProposal:
			d.logger.Debug("broadcasting proposal", "round", act.Proposal.Round, "block", act.Proposal.Block.Hex())
		case StartTimer:
			d.logger.Debug("starting timer", "kind", act.Kind.String(), "round", act.Round, "duration", act.Duration)
		case CancelTimer:
			d.logger.Debug("cancelling timer", "id", act.TimerID)
		case RequestBlockCandidate:
			d.logger.Debug("requesting block candidate", "round", act.Round)
		}
	}
}
