// Package ledger implements the voting-power ledger: the read-only,
// per-height mapping from validator identifier to voting power, and the
// stable-leader proposer schedule derived from it.
package ledger

import (
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// ErrEmptyValidatorSet is returned by New when no validators are supplied.
var ErrEmptyValidatorSet = errors.New("vetomint: empty validator set")

// ErrNonPositivePower is returned by New when a validator carries zero or
// negative voting power.
var ErrNonPositivePower = errors.New("vetomint: non-positive voting power")

// Validator is one entry of the height's voting-power ledger.
type Validator struct {
	Address common.Address
	Power   uint64
}

// Ledger is the immutable per-height voting-power ledger plus the derived
// total and proposer-selection function. It is read-only for the lifetime of
// a height (§4.1): building a new Ledger requires constructing the next
// height's Height Driver.
type Ledger struct {
	powers map[common.Address]uint64
	total  uint64

	// schedule is the explicit stable-leader schedule supplied at
	// construction. Round indices beyond it wrap via roundRobin.
	schedule []common.Address

	// roundRobin is every validator ordered by address, each repeated
	// Power times, used to extend the schedule deterministically past its
	// explicit length (§4.1, §14 resolved open question).
	roundRobin []common.Address
}

// New builds a Ledger from the given validator set and explicit stable-leader
// schedule. The schedule may be shorter than, equal to, or (pointlessly)
// longer than any particular height's lifetime; round indices past
// len(schedule) are resolved by deterministic weighted round-robin ordered
// by validator address.
func New(validators []Validator, schedule []common.Address) (*Ledger, error) {
	if len(validators) == 0 {
		return nil, ErrEmptyValidatorSet
	}

	powers := make(map[common.Address]uint64, len(validators))
	var total uint64
	for _, v := range validators {
		if v.Power == 0 {
			return nil, ErrNonPositivePower
		}
		powers[v.Address] = v.Power
		total += v.Power
	}

	sorted := make([]Validator, len(validators))
	copy(sorted, validators)
	sort.Slice(sorted, func(i, j int) bool {
		return lessAddress(sorted[i].Address, sorted[j].Address)
	})

	var roundRobin []common.Address
	for _, v := range sorted {
		for i := uint64(0); i < v.Power; i++ {
			roundRobin = append(roundRobin, v.Address)
		}
	}

	sc := make([]common.Address, len(schedule))
	copy(sc, schedule)

	return &Ledger{
		powers:     powers,
		total:      total,
		schedule:   sc,
		roundRobin: roundRobin,
	}, nil
}

func lessAddress(a, b common.Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Power returns the voting power of v, or false if v is not a member of this
// height's validator set.
func (l *Ledger) Power(v common.Address) (uint64, bool) {
	w, ok := l.powers[v]
	return w, ok
}

// Total returns W, the sum of voting power across the height.
func (l *Ledger) Total() uint64 {
	return l.total
}

// Thresholds bundles the exact-rational thresholds derived from W (§3).
type Thresholds struct {
	TwoThirds  uint64 // T_23 = floor(2W/3) + 1
	FiveSixths uint64 // T_56 = floor(5W/6) + 1
	F16        uint64 // floor(W/6)
	F13        uint64 // floor(W/3)
}

// Thresholds computes the quorum and byzantine-tolerance thresholds for this
// ledger's total voting power.
func (l *Ledger) Thresholds() Thresholds {
	w := l.total
	return Thresholds{
		TwoThirds:  (2*w)/3 + 1,
		FiveSixths: (5*w)/6 + 1,
		F16:        w / 6,
		F13:        w / 3,
	}
}

// Proposer is total: every round index has a designated proposer, even
// rounds well beyond the explicit schedule.
func (l *Ledger) Proposer(round int64) common.Address {
	if round >= 0 && int(round) < len(l.schedule) {
		return l.schedule[round]
	}
	offset := int(round) - len(l.schedule)
	n := len(l.roundRobin)
	return l.roundRobin[offset%n]
}

// Validators returns the height's validator set sorted by address, for
// callers that need to enumerate membership (e.g. to build a finalization
// proof or to check committee size).
func (l *Ledger) Validators() []Validator {
	out := make([]Validator, 0, len(l.powers))
	for addr, w := range l.powers {
		out = append(out, Validator{Address: addr, Power: w})
	}
	sort.Slice(out, func(i, j int) bool { return lessAddress(out[i].Address, out[j].Address) })
	return out
}
