// Package message defines the wire types exchanged between validators:
// proposals and votes (§3), RLP-encoded the way the teacher's
// consensus/tendermint/messages package encodes them.
package message

import (
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// NilValue is the distinguished "⊥" block identifier.
var NilValue common.Hash

// NoValidRound is the sentinel for a fresh (non-reproposed) proposal.
const NoValidRound int64 = -1

// Kind distinguishes prevote from precommit votes.
type Kind uint8

const (
	Prevote Kind = iota
	Precommit
)

func (k Kind) String() string {
	switch k {
	case Prevote:
		return "prevote"
	case Precommit:
		return "precommit"
	default:
		panic(fmt.Sprintf("vetomint: unrecognised vote kind %d", k))
	}
}

// Proposal is a proposer's claim that block B should be decided in round r,
// optionally carrying the round in which B became locked-valid (the POL,
// ValidRound), or NoValidRound if B is freshly proposed (§3).
type Proposal struct {
	Height     uint64
	Round      int64
	Block      common.Hash
	ValidRound int64
	Proposer   common.Address
}

func (p *Proposal) String() string {
	return fmt.Sprintf("Proposal{h:%d r:%d block:%s validRound:%d proposer:%s}",
		p.Height, p.Round, p.Block.Hex(), p.ValidRound, p.Proposer.Hex())
}

// rlpProposal is the over-the-wire shape; RLP cannot encode a negative
// integer, so ValidRound==-1 is carried as an explicit flag, exactly as the
// teacher's Proposal.EncodeRLP/DecodeRLP does.
type rlpProposal struct {
	Height          uint64
	Round           uint64
	Block           common.Hash
	ValidRound      uint64
	IsValidRoundNil bool
	Proposer        common.Address
}

// MaxRound bounds round numbers accepted off the wire, guarding against
// malicious round values that would otherwise be used to index slices or
// schedule absurd timeouts.
const MaxRound = 1 << 32

var (
	errInvalidMessage      = errors.New("vetomint: invalid message")
	errBadProposalValidRnd = errors.New("vetomint: bad proposal validRound with isValidRoundNil set")
)

// EncodeRLP implements rlp.Encoder.
func (p *Proposal) EncodeRLP(w io.Writer) error {
	var validRound uint64
	isNil := p.ValidRound == NoValidRound
	if !isNil {
		validRound = uint64(p.ValidRound)
	}
	return rlp.Encode(w, &rlpProposal{
		Height:          p.Height,
		Round:           uint64(p.Round),
		Block:           p.Block,
		ValidRound:      validRound,
		IsValidRoundNil: isNil,
		Proposer:        p.Proposer,
	})
}

// DecodeRLP implements rlp.Decoder.
func (p *Proposal) DecodeRLP(s *rlp.Stream) error {
	var wire rlpProposal
	if err := s.Decode(&wire); err != nil {
		return err
	}
	var validRound int64
	if wire.IsValidRoundNil {
		if wire.ValidRound != 0 {
			return errBadProposalValidRnd
		}
		validRound = NoValidRound
	} else {
		validRound = int64(wire.ValidRound)
	}
	if wire.Round > MaxRound || validRound > MaxRound {
		return errInvalidMessage
	}
	p.Height = wire.Height
	p.Round = int64(wire.Round)
	p.Block = wire.Block
	p.ValidRound = validRound
	p.Proposer = wire.Proposer
	return nil
}

// Vote is a signed prevote or precommit for a block, or for NilValue (§3).
type Vote struct {
	Kind   Kind
	Height uint64
	Round  int64
	Block  common.Hash
	Signer common.Address
}

func (v *Vote) String() string {
	return fmt.Sprintf("Vote{%s h:%d r:%d block:%s signer:%s}",
		v.Kind, v.Height, v.Round, v.Block.Hex(), v.Signer.Hex())
}

type rlpVote struct {
	Kind   uint8
	Height uint64
	Round  uint64
	Block  common.Hash
	Signer common.Address
}

// EncodeRLP implements rlp.Encoder.
func (v *Vote) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &rlpVote{
		Kind:   uint8(v.Kind),
		Height: v.Height,
		Round:  uint64(v.Round),
		Block:  v.Block,
		Signer: v.Signer,
	})
}

// DecodeRLP implements rlp.Decoder.
func (v *Vote) DecodeRLP(s *rlp.Stream) error {
	var wire rlpVote
	if err := s.Decode(&wire); err != nil {
		return err
	}
	if wire.Round > MaxRound {
		return errInvalidMessage
	}
	if wire.Kind != uint8(Prevote) && wire.Kind != uint8(Precommit) {
		return errInvalidMessage
	}
	v.Kind = Kind(wire.Kind)
	v.Height = wire.Height
	v.Round = int64(wire.Round)
	v.Block = wire.Block
	v.Signer = wire.Signer
	return nil
}

// Equivocation bundles two distinct votes by the same signer for the same
// (kind, height, round), the evidence carried by a RecordEquivocation action
// (§7, SPEC_FULL §13 — adapted from the teacher's accountability.Proof).
type Equivocation struct {
	First  Vote
	Second Vote
}

func (e *Equivocation) String() string {
	return fmt.Sprintf("Equivocation{first:%s second:%s}", e.First.String(), e.Second.String())
}
