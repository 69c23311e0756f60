// Package eventlog implements the caller-owned, append-only persisted event
// log of §6: "append-only file of serialized inbound events. On restart, the
// caller replays it in order through a fresh step, reaching the identical
// state." It is deliberately outside consensus/vetomint/core — the core
// itself never touches storage (§1 out-of-scope: "the git-backed storage
// layer"; §5: "no I/O").
//
// Grounded on tolelom-tolchain's use of github.com/syndtr/goleveldb as a
// storage engine, and on the teacher's RLP wire encoding
// (consensus/tendermint/messages) for the record format.
package eventlog

import (
	"encoding/binary"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/autonity/vetomint/consensus/vetomint/core"
	"github.com/autonity/vetomint/consensus/vetomint/message"
)

// ErrUnknownEventKind is returned when a stored record carries a kind byte
// this version of the package doesn't recognise.
var ErrUnknownEventKind = errors.New("eventlog: unknown event kind")

// kind tags each record so it can be decoded back into the right
// core.Event variant; this is the pure-state analogue of the teacher's
// message.Code byte (consensus/tendermint/messages).
type kind uint8

const (
	kindProposalReceived kind = iota
	kindPrevoteReceived
	kindPrecommitReceived
	kindLocalBlockReady
	kindTimerFired
	kindOperatorVeto
)

// record is the on-disk RLP shape. Only the fields relevant to its Kind are
// populated; unused fields are zero.
type record struct {
	Kind        uint8
	Proposal    message.Proposal
	Vote        message.Vote
	SignatureOK bool
	BodyValid   bool
	Round       uint64 // RLP cannot encode signed integers
	Block       common.Hash
	TimerID     []byte
	TimerKind   uint8
}

// Log is an append-only, leveldb-backed sequence of core.Event values, keyed
// by a monotonically increasing big-endian sequence number so iteration
// order matches append order.
type Log struct {
	db   *leveldb.DB
	next uint64
}

// Open opens (creating if necessary) a Log at path.
func Open(path string) (*Log, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	next := uint64(0)
	iter := db.NewIterator(nil, nil)
	for iter.Next() {
		next++
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		db.Close()
		return nil, err
	}
	return &Log{db: db, next: next}, nil
}

// Close releases the underlying database handle.
func (l *Log) Close() error {
	return l.db.Close()
}

// Append encodes and persists ev as the next record in sequence.
func (l *Log) Append(ev core.Event) error {
	rec, err := encode(ev)
	if err != nil {
		return err
	}
	data, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return err
	}
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], l.next)
	if err := l.db.Put(key[:], data, nil); err != nil {
		return err
	}
	l.next++
	return nil
}

// ReplayAll decodes every persisted record in append order and invokes fn
// for each, stopping and returning the first error fn returns.
func (l *Log) ReplayAll(fn func(core.Event) error) error {
	iter := l.db.NewIterator(&util.Range{}, nil)
	defer iter.Release()
	for iter.Next() {
		var rec record
		if err := rlp.DecodeBytes(iter.Value(), &rec); err != nil {
			return err
		}
		ev, err := decode(rec)
		if err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return iter.Error()
}

func encode(ev core.Event) (*record, error) {
	switch e := ev.(type) {
	case core.ProposalReceived:
		return &record{Kind: uint8(kindProposalReceived), Proposal: e.Proposal, SignatureOK: e.SignatureOK, BodyValid: e.BodyValid}, nil
	case core.PrevoteReceived:
		return &record{Kind: uint8(kindPrevoteReceived), Vote: e.Vote, SignatureOK: e.SignatureOK}, nil
	case core.PrecommitReceived:
		return &record{Kind: uint8(kindPrecommitReceived), Vote: e.Vote, SignatureOK: e.SignatureOK}, nil
	case core.LocalBlockReady:
		return &record{Kind: uint8(kindLocalBlockReady), Round: uint64(e.Round), Block: e.Block}, nil
	case core.TimerFired:
		id, _ := e.TimerID.MarshalBinary()
		return &record{Kind: uint8(kindTimerFired), Round: uint64(e.Round), TimerID: id, TimerKind: uint8(e.Kind)}, nil
	case core.OperatorVeto:
		return &record{Kind: uint8(kindOperatorVeto), Round: uint64(e.Round)}, nil
	default:
		return nil, ErrUnknownEventKind
	}
}

func decode(rec record) (core.Event, error) {
	switch kind(rec.Kind) {
	case kindProposalReceived:
		return core.ProposalReceived{Proposal: rec.Proposal, SignatureOK: rec.SignatureOK, BodyValid: rec.BodyValid}, nil
	case kindPrevoteReceived:
		return core.PrevoteReceived{Vote: rec.Vote, SignatureOK: rec.SignatureOK}, nil
	case kindPrecommitReceived:
		return core.PrecommitReceived{Vote: rec.Vote, SignatureOK: rec.SignatureOK}, nil
	case kindLocalBlockReady:
		return core.LocalBlockReady{Round: int64(rec.Round), Block: rec.Block}, nil
	case kindTimerFired:
		var id uuid.UUID
		if err := id.UnmarshalBinary(rec.TimerID); err != nil {
			return nil, err
		}
		return core.TimerFired{TimerID: id, Round: int64(rec.Round), Kind: core.TimerKind(rec.TimerKind)}, nil
	case kindOperatorVeto:
		return core.OperatorVeto{Round: int64(rec.Round)}, nil
	default:
		return nil, ErrUnknownEventKind
	}
}
