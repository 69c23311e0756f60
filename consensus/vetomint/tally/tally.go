// Package tally implements the vote tally: a per-(height, round), per-kind
// accumulator of votes (§4.2). It deduplicates by signer, sums weight per
// candidate block, detects equivocation, and answers the threshold
// predicates the round state machine drives off of.
package tally

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/autonity/vetomint/consensus/vetomint/ledger"
	"github.com/autonity/vetomint/consensus/vetomint/message"
)

// AddOutcome is the result of adding a single vote to a Tally.
type AddOutcome uint8

const (
	// Accepted means the vote was new and its weight now counts.
	Accepted AddOutcome = iota
	// Duplicate means this exact (signer, block) vote was already recorded.
	Duplicate
	// Equivocation means this signer already voted for a *different* block
	// in this (kind, height, round); the tally is unchanged, the first
	// observation stands (§4.2).
	Equivocation
	// UnknownSigner means the signer carries no voting power in this
	// height's ledger; the vote is rejected outright.
	UnknownSigner
)

type entry struct {
	block  common.Hash
	weight uint64
}

// Tally accumulates one kind of vote (prevote or precommit) for one round.
// Zero value is not usable; construct with New.
type Tally struct {
	ledger *ledger.Ledger

	bySigner    map[common.Address]entry
	sumByBlock  map[common.Hash]uint64
	totalWeight uint64
}

// New builds an empty Tally bound to the given height ledger.
func New(l *ledger.Ledger) *Tally {
	return &Tally{
		ledger:     l,
		bySigner:   make(map[common.Address]entry),
		sumByBlock: make(map[common.Hash]uint64),
	}
}

// Add records a vote, returning the outcome and, for Equivocation, the prior
// conflicting vote's block so the caller can build evidence.
func (t *Tally) Add(signer common.Address, block common.Hash) (AddOutcome, common.Hash) {
	weight, ok := t.ledger.Power(signer)
	if !ok {
		return UnknownSigner, common.Hash{}
	}

	if prior, seen := t.bySigner[signer]; seen {
		if prior.block == block {
			return Duplicate, common.Hash{}
		}
		return Equivocation, prior.block
	}

	t.bySigner[signer] = entry{block: block, weight: weight}
	t.sumByBlock[block] += weight
	t.totalWeight += weight
	return Accepted, common.Hash{}
}

// SumAny returns the total weight of all recorded votes, nil and non-nil.
func (t *Tally) SumAny() uint64 {
	return t.totalWeight
}

// SumNonNil returns the total weight of recorded votes for any non-nil
// block.
func (t *Tally) SumNonNil() uint64 {
	return t.totalWeight - t.sumByBlock[message.NilValue]
}

// SumFor returns the recorded weight for a specific block (which may be
// message.NilValue).
func (t *Tally) SumFor(block common.Hash) uint64 {
	return t.sumByBlock[block]
}

// HasTwoThirdsFor reports whether weight for block reaches T_23, i.e.
// exceeds 2W/3.
func (t *Tally) HasTwoThirdsFor(block common.Hash) bool {
	return t.sumByBlock[block] >= t.ledger.Thresholds().TwoThirds
}

// HasTwoThirdsNil reports whether weight for NilValue reaches T_23.
func (t *Tally) HasTwoThirdsNil() bool {
	return t.HasTwoThirdsFor(message.NilValue)
}

// HasTwoThirdsAny reports whether the total recorded weight (any kind of
// target) reaches T_23.
func (t *Tally) HasTwoThirdsAny() bool {
	return t.totalWeight >= t.ledger.Thresholds().TwoThirds
}

// HasFiveSixthsAny reports whether the total recorded weight reaches T_56,
// i.e. exceeds 5W/6 — the Vetomint early-termination threshold.
func (t *Tally) HasFiveSixthsAny() bool {
	return t.totalWeight >= t.ledger.Thresholds().FiveSixths
}

// BestCandidate returns the non-nil block with the greatest recorded
// weight, ties broken by lexicographic hash order (needed for deterministic
// replay, §4.2), or ok=false if no non-nil votes were recorded.
func (t *Tally) BestCandidate() (block common.Hash, ok bool) {
	var candidates []common.Hash
	for b := range t.sumByBlock {
		if b != message.NilValue {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return common.Hash{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		wi, wj := t.sumByBlock[candidates[i]], t.sumByBlock[candidates[j]]
		if wi != wj {
			return wi > wj
		}
		return bytes.Compare(candidates[i][:], candidates[j][:]) < 0
	})
	return candidates[0], true
}

// Signers returns every signer who has a recorded (non-equivocating) vote
// for the given block, used to assemble a finalization proof (§6).
func (t *Tally) Signers(block common.Hash) []common.Address {
	var out []common.Address
	for signer, e := range t.bySigner {
		if e.block == block {
			out = append(out, signer)
		}
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}
