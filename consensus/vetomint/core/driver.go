package core

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/autonity/vetomint/consensus/vetomint/config"
	"github.com/autonity/vetomint/consensus/vetomint/ledger"
	"github.com/autonity/vetomint/consensus/vetomint/message"
	"github.com/autonity/vetomint/consensus/vetomint/tally"
)

// timerNamespace seeds the deterministic (non-random) timer IDs the Height
// Driver mints: a SHA1 (v5) UUID derived from (height, round, kind) rather
// than a random v4 UUID, so that replaying the same event log twice
// produces byte-identical StartTimer actions (§8.5 replay determinism). The
// core must never consult a clock or an RNG (§5); this keeps google/uuid
// usable without giving up purity.
var timerNamespace = uuid.MustParse("8f14e45f-ceea-467e-bd36-6587b7eb5917")

func timerID(height uint64, round int64, kind TimerKind) uuid.UUID {
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[0:8], height)
	binary.BigEndian.PutUint64(buf[8:16], uint64(round))
	binary.BigEndian.PutUint64(buf[16:24], uint64(kind))
	return uuid.NewSHA1(timerNamespace, buf[:])
}

// HeightDriver owns every round record for one height, the height-wide
// locked/valid state, and the current round index (§4.4). It is the pure
// `step` function of §2/§5: construct one per height, feed it events via
// Dispatcher, throw it away once it emits Decide.
type HeightDriver struct {
	height uint64
	ledger *ledger.Ledger
	cfg    config.Config
	local  *common.Address

	rounds       map[int64]*roundState
	currentRound int64

	lockedBlock *common.Hash
	lockedRound int64

	validBlock *common.Hash
	validRound int64

	vetoedRounds map[int64]bool

	decided bool
}

// NewHeightDriver constructs a height instance and returns the actions for
// entering round 0 (§3 Lifecycle, §4.3 "on entering round r").
func NewHeightDriver(height uint64, l *ledger.Ledger, cfg config.Config, local *common.Address) (*HeightDriver, []Action) {
	d := &HeightDriver{
		height:       height,
		ledger:       l,
		cfg:          cfg,
		local:        local,
		rounds:       make(map[int64]*roundState),
		currentRound: -1,
		lockedRound:  message.NoValidRound,
		validRound:   message.NoValidRound,
		vetoedRounds: make(map[int64]bool),
	}
	return d, d.startRound(0)
}

// Decided reports whether this height has reached a terminal decision.
func (d *HeightDriver) Decided() bool {
	return d.decided
}

func (d *HeightDriver) round(r int64) *roundState {
	rs, ok := d.rounds[r]
	if !ok {
		rs = newRoundState(r, d.ledger)
		d.rounds[r] = rs
	}
	return rs
}

// startRound enters round r (§4.3 "on entering round r").
func (d *HeightDriver) startRound(r int64) []Action {
	rs := d.round(r)
	d.currentRound = r
	rs.step = AwaitProposal

	if d.local == nil {
		id := timerID(d.height, r, KindPropose)
		rs.proposeTimerID = id
		return []Action{StartTimer{TimerID: id, Round: r, Kind: KindPropose, Duration: d.cfg.Timeout(r)}}
	}

	if d.ledger.Proposer(r) != *d.local {
		id := timerID(d.height, r, KindPropose)
		rs.proposeTimerID = id
		return []Action{StartTimer{TimerID: id, Round: r, Kind: KindPropose, Duration: d.cfg.Timeout(r)}}
	}

	if d.validBlock != nil {
		p := message.Proposal{
			Height:     d.height,
			Round:      r,
			Block:      *d.validBlock,
			ValidRound: d.validRound,
			Proposer:   *d.local,
		}
		return []Action{BroadcastProposal{Proposal: p}}
	}
	return []Action{RequestBlockCandidate{Round: r}}
}

// Step is the single entry point: consume one event, return the ordered
// actions the caller must execute (§5, §6). Once the height has decided,
// every subsequent Step call is a no-op (§3 "Decision is final").
func (d *HeightDriver) Step(ev Event) []Action {
	if d.decided {
		return nil
	}
	switch e := ev.(type) {
	case ProposalReceived:
		return d.onProposal(e)
	case PrevoteReceived:
		return d.onVote(message.Prevote, e.Vote, e.SignatureOK)
	case PrecommitReceived:
		return d.onVote(message.Precommit, e.Vote, e.SignatureOK)
	case LocalBlockReady:
		return d.onLocalBlockReady(e)
	case TimerFired:
		return d.onTimerFired(e)
	case OperatorVeto:
		d.vetoedRounds[e.Round] = true
		return nil
	case Start:
		// Re-delivering Start mid-height is a caller error; ignored rather
		// than panicking, since §7 reserves process-aborting failure for
		// internal invariant violations only.
		return nil
	default:
		return nil
	}
}

func (d *HeightDriver) onLocalBlockReady(e LocalBlockReady) []Action {
	if d.local == nil || e.Round != d.currentRound {
		return nil
	}
	rs := d.round(e.Round)
	if rs.step != AwaitProposal || d.ledger.Proposer(e.Round) != *d.local || rs.proposal != nil {
		return nil
	}
	p := message.Proposal{
		Height:     d.height,
		Round:      e.Round,
		Block:      e.Block,
		ValidRound: message.NoValidRound,
		Proposer:   *d.local,
	}
	return []Action{BroadcastProposal{Proposal: p}}
}

func (d *HeightDriver) onProposal(e ProposalReceived) []Action {
	p := e.Proposal
	if !e.SignatureOK || p.Height != d.height {
		return nil
	}
	if p.Proposer != d.ledger.Proposer(p.Round) {
		// Not from this round's proposer: ignored (§4.3, §6).
		return nil
	}

	rs := d.round(p.Round)
	if rs.proposal != nil {
		// Duplicate/second proposal from the same proposer this round:
		// idempotent no-op.
		return nil
	}
	proposalCopy := p
	rs.proposal = &proposalCopy

	var actions []Action
	if p.Round == d.currentRound && rs.step == AwaitProposal {
		target := d.prevoteTarget(rs, &proposalCopy, e.BodyValid)
		rs.step = Prevoted
		vote := message.Vote{Kind: message.Prevote, Height: d.height, Round: p.Round, Block: target, Signer: d.localOrZero()}
		actions = append(actions, BroadcastVote{Vote: vote})
	}

	// §5 only orders the caller's own event stream; it never guarantees a
	// proposal arrives before the prevotes/precommits that satisfy quorum
	// for it (ordinary gossip can deliver them in either order). Re-run the
	// same quorum-driven transitions onVote would have, now that rs.proposal
	// is known, exactly as handler.go's checkUponConditions re-evaluates
	// line 36/49 (t.in(msgProposal, msgPrevote)/(msgProposal, msgPrecommit))
	// on a late proposal arrival, not only on vote arrival.
	actions = append(actions, d.onPrevoteAccepted(rs, message.Vote{Block: p.Block})...)
	actions = append(actions, d.onPrecommitAccepted(rs, message.Vote{})...)

	return actions
}

// prevoteTarget implements the prevote-target decision tree of §4.3: lock
// carry-over, then POL (proof-of-lock from a referenced valid round),
// defaulting to nil when locked on a different, non-POL'd block — the
// classical Tendermint lock rule, adopted per §9's "implement per classical
// Tendermint POL rules" where the source is ambiguous: spec.md's final
// catch-all bullet ("Else: prevote B") would, read completely literally,
// let a locked validator help a conflicting block reach quorum whenever
// body validation merely passes, which would break the safety property
// §8.1 singles out as the hard part of this whole core. The local operator
// veto (§4.3 "On operator veto signal") is then applied as a final one-shot
// override that can flip an otherwise-non-nil result to nil — the only
// reading consistent with spec.md's scenario S2, where C and D veto a round
// that has no prior lock (lockedRound=-1 would otherwise unconditionally
// select B) and still end up prevoting nil.
func (d *HeightDriver) prevoteTarget(rs *roundState, p *message.Proposal, bodyValid bool) common.Hash {
	var target common.Hash
	switch {
	case d.lockedRound == message.NoValidRound || (d.lockedBlock != nil && *d.lockedBlock == p.Block):
		if bodyValid {
			target = p.Block
		} else {
			target = message.NilValue
		}
	case p.ValidRound >= 0 && d.round(p.ValidRound).prevotes.HasTwoThirdsFor(p.Block):
		if bodyValid {
			target = p.Block
		} else {
			target = message.NilValue
		}
	default:
		target = message.NilValue
	}

	if d.vetoedRounds[rs.round] {
		delete(d.vetoedRounds, rs.round)
		return message.NilValue
	}
	return target
}

func (d *HeightDriver) localOrZero() common.Address {
	if d.local == nil {
		return common.Address{}
	}
	return *d.local
}

func (d *HeightDriver) onTimerFired(e TimerFired) []Action {
	if e.Round != d.currentRound {
		return nil
	}
	rs := d.round(e.Round)
	switch e.Kind {
	case KindPropose:
		if rs.step != AwaitProposal || e.TimerID != rs.proposeTimerID {
			return nil
		}
		rs.step = Prevoted
		vote := message.Vote{Kind: message.Prevote, Height: d.height, Round: e.Round, Block: message.NilValue, Signer: d.localOrZero()}
		return []Action{BroadcastVote{Vote: vote}}
	case KindPrevote:
		if rs.step != Prevoted || e.TimerID != rs.prevoteTimerID {
			return nil
		}
		rs.step = Precommitted
		vote := message.Vote{Kind: message.Precommit, Height: d.height, Round: e.Round, Block: message.NilValue, Signer: d.localOrZero()}
		return []Action{BroadcastVote{Vote: vote}}
	case KindPrecommit:
		if e.TimerID != rs.precommitTimerID {
			return nil
		}
		return d.advanceRound(e.Round + 1)
	default:
		return nil
	}
}

// onVote implements §4.3's "on prevote received"/"on precommit received".
func (d *HeightDriver) onVote(kind message.Kind, v message.Vote, signatureOK bool) []Action {
	if !signatureOK || v.Height != d.height {
		return nil
	}

	rs := d.round(v.Round)
	t := rs.prevotes
	raw := rs.rawPrevotes
	if kind == message.Precommit {
		t = rs.precommits
		raw = rs.rawPrecommits
	}

	outcome, priorBlock := t.Add(v.Signer, v.Block)
	var actions []Action
	switch outcome {
	case tally.UnknownSigner, tally.Duplicate:
		return nil
	case tally.Equivocation:
		prior := v
		prior.Block = priorBlock
		actions = append(actions, RecordEquivocation{Evidence: message.Equivocation{First: prior, Second: v}})
		return actions
	}
	raw[v.Signer] = v

	if kind == message.Prevote {
		actions = append(actions, d.onPrevoteAccepted(rs, v)...)
	} else {
		actions = append(actions, d.onPrecommitAccepted(rs, v)...)
	}

	if v.Round > d.currentRound && (rs.prevotes.HasTwoThirdsAny() || rs.precommits.HasTwoThirdsAny()) {
		actions = append(actions, d.advanceRound(v.Round)...)
	}

	return actions
}

// onPrevoteAccepted runs the upon-conditions of §4.3's "on prevote
// received". Two distinct quorum paths can move a round from Prevoted to
// Precommitted: the classical Tendermint "some block reached >2/3" lock
// (demonstrated by spec.md's scenario S3, where 3/4 = 75% never reaches the
// 5/6 early-termination bar but still precommits before any timeout), and
// the Vetomint-specific 5/6-any early termination that resolves a split
// vote with a nil precommit when no single block ever reaches >2/3 (S2, S5).
// Because a round's own step leaves Prevoted the first time either path
// fires, at most one of them ever runs per round.
func (d *HeightDriver) onPrevoteAccepted(rs *roundState, v message.Vote) []Action {
	var actions []Action

	if rs.step.atLeast(Prevoted) && rs.proposal != nil && v.Block != message.NilValue && rs.prevotes.HasTwoThirdsFor(v.Block) {
		block := v.Block
		d.validBlock = &block
		d.validRound = rs.round
	}

	if rs.step != Prevoted {
		return actions
	}

	if v.Block != message.NilValue && rs.prevotes.HasTwoThirdsFor(v.Block) {
		b := v.Block
		if rs.prevoteTimeoutScheduled {
			actions = append(actions, CancelTimer{TimerID: rs.prevoteTimerID})
			rs.prevoteTimeoutScheduled = false
		}
		d.lockedBlock = &b
		d.lockedRound = rs.round
		d.validBlock = &b
		d.validRound = rs.round
		actions = append(actions, BroadcastVote{Vote: message.Vote{Kind: message.Precommit, Height: d.height, Round: rs.round, Block: b, Signer: d.localOrZero()}})
		rs.step = Precommitted
		return actions
	}

	if rs.prevotes.HasFiveSixthsAny() {
		if rs.prevoteTimeoutScheduled {
			actions = append(actions, CancelTimer{TimerID: rs.prevoteTimerID})
			rs.prevoteTimeoutScheduled = false
		}
		actions = append(actions, BroadcastVote{Vote: message.Vote{Kind: message.Precommit, Height: d.height, Round: rs.round, Block: message.NilValue, Signer: d.localOrZero()}})
		rs.step = Precommitted
		return actions
	}

	if !rs.prevoteTimeoutScheduled && rs.prevotes.HasTwoThirdsAny() {
		id := timerID(d.height, rs.round, KindPrevote)
		rs.prevoteTimerID = id
		rs.prevoteTimeoutScheduled = true
		actions = append(actions, StartTimer{TimerID: id, Round: rs.round, Kind: KindPrevote, Duration: d.cfg.Timeout(rs.round)})
	}

	return actions
}

func (d *HeightDriver) onPrecommitAccepted(rs *roundState, v message.Vote) []Action {
	var actions []Action

	if rs.proposal != nil && rs.proposal.Block != message.NilValue && rs.precommits.HasTwoThirdsFor(rs.proposal.Block) {
		return append(actions, d.decide(rs)...)
	}

	if !rs.precommitTimeoutScheduled && rs.precommits.HasTwoThirdsAny() {
		id := timerID(d.height, rs.round, KindPrecommit)
		rs.precommitTimerID = id
		rs.precommitTimeoutScheduled = true
		actions = append(actions, StartTimer{TimerID: id, Round: rs.round, Kind: KindPrecommit, Duration: d.cfg.Timeout(rs.round)})
	}

	return actions
}

func (d *HeightDriver) decide(rs *roundState) []Action {
	block := rs.proposal.Block
	signers := rs.precommits.Signers(block)
	if len(signers) == 0 {
		panic("vetomint: internal invariant violation: deciding with no recorded precommit signers")
	}
	proof := make([]message.Vote, 0, len(signers))
	for _, signer := range signers {
		proof = append(proof, rs.rawPrecommits[signer])
	}
	d.decided = true
	rs.step = Decided
	return []Action{Decide{Height: d.height, Block: block, Proof: proof}}
}

func (d *HeightDriver) advanceRound(r int64) []Action {
	if r <= d.currentRound {
		return nil
	}
	actions := []Action{AdvanceRound{Round: r}}
	return append(actions, d.startRound(r)...)
}
