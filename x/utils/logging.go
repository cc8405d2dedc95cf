/*
Package utils contains common decorators for the processing stack:
panic recovery, per transaction logging and store savepoints.
*/
package utils

import (
	"time"

	"github.com/genezys/custody"
)

// Logging is a decorator to log transactions as they pass through,
// tagged with their route path and processing time.
type Logging struct{}

var _ custody.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Check logs error -> info, success -> debug
func (r Logging) Check(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	r.logCall(ctx, tx, start, resLog, err, true)
	return res, err
}

// Deliver logs error -> error, success -> info
func (r Logging) Deliver(ctx custody.Context, store custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	r.logCall(ctx, tx, start, resLog, err, false)
	return res, err
}

// logCall writes the route, the time spent and the result to the logger
func (r Logging) logCall(ctx custody.Context, tx custody.Tx, start time.Time, msg string, err error, lowPrio bool) {
	logger := custody.GetLogger(ctx).With(
		"path", custody.GetPath(tx),
		"duration", time.Since(start)/time.Microsecond,
	)

	if err != nil {
		logger.With("err", err).Error(msg)
		return
	}

	// Although the message can be empty, we still want to emit a log
	// entry for the path and duration tags.
	if lowPrio {
		logger.Debug(msg)
	} else {
		logger.Info(msg)
	}
}
