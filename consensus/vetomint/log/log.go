// Package log is a thin wrapper around go-ethereum's structured logger,
// used the way the teacher's consensus/tendermint/core and eth packages use
// it ("c.logger.Info(...)"). The consensus core itself never logs (§5: no
// I/O); only the Event Dispatcher does.
package log

import (
	"github.com/ethereum/go-ethereum/log"
)

// Logger is re-exported so callers don't need to import go-ethereum/log
// directly just to build one.
type Logger = log.Logger

// New returns a logger tagged with the given context, e.g.
// log.New("height", h, "component", "dispatcher").
func New(ctx ...interface{}) Logger {
	return log.New(ctx...)
}

// Root returns the root logger, matching log.Root() in the teacher's code.
func Root() Logger {
	return log.Root()
}
