package core

import "github.com/ethereum/go-ethereum/common"

// BlockSource is the external collaborator that answers a
// RequestBlockCandidate action by producing a fresh block to propose (§6).
// The pure Dispatcher never calls this itself — it only emits the action —
// but NewDispatcherSync/DriveSync exist for callers (such as tests) that
// want a synchronous helper rather than wiring the request/response
// round trip through their own event loop.
type BlockSource interface {
	CandidateBlock(round int64) (common.Hash, error)
}

// NewDispatcherSync builds a Dispatcher for ev and immediately answers any
// RequestBlockCandidate its round-0 entry produced, returning every action
// observed, including the ones from the synchronously-supplied proposal.
func NewDispatcherSync(ev Start, source BlockSource) (*Dispatcher, []Action, error) {
	d, actions := NewDispatcher(ev)
	out, err := drain(d, source, actions)
	return d, out, err
}

// DriveSync feeds ev to the dispatcher and synchronously answers every
// RequestBlockCandidate the step produces by calling source, feeding the
// resulting LocalBlockReady straight back in, until a step produces no more
// block requests. It returns every action observed along the way, in order.
func DriveSync(d *Dispatcher, source BlockSource, ev Event) ([]Action, error) {
	return drain(d, source, d.Step(ev))
}

func drain(d *Dispatcher, source BlockSource, actions []Action) ([]Action, error) {
	out := append([]Action{}, actions...)
	for {
		var pending *RequestBlockCandidate
		for i := range actions {
			if req, ok := actions[i].(RequestBlockCandidate); ok {
				pending = &req
				break
			}
		}
		if pending == nil {
			return out, nil
		}
		block, err := source.CandidateBlock(pending.Round)
		if err != nil {
			return out, err
		}
		actions = d.Step(LocalBlockReady{Round: pending.Round, Block: block})
		out = append(out, actions...)
	}
}
