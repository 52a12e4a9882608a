// Package inflight tracks outstanding requests against one slice of store state.
//
// Every request takes a sequence number from Begin. Only the response carrying the
// latest number may commit, so overlapping requests cannot overwrite newer state with
// older results. A Tracker is not safe for concurrent use; the owning store guards it
// with its own mutex.
package inflight

import (
	"errors"

	"github.com/jafarshop/storefront/internal/metrics"
	sferrors "github.com/jafarshop/storefront/pkg/errors"
)

// ErrSuperseded is returned for a response that lost to a newer request on the same slice
var ErrSuperseded = errors.New("superseded by a newer request")

type Tracker struct {
	name    string
	seq     uint64
	pending int
	err     string
}

func NewTracker(name string) Tracker {
	return Tracker{name: name}
}

// Begin registers a new request and returns its sequence number
func (t *Tracker) Begin() uint64 {
	t.seq++
	t.pending++
	return t.seq
}

// Finish records the outcome of request seq and reports whether it is the latest one.
// Errors of superseded requests are discarded.
func (t *Tracker) Finish(seq uint64, err error) bool {
	if t.pending > 0 {
		t.pending--
	}
	if seq != t.seq {
		metrics.RecordStaleResponse(t.name)
		return false
	}
	if err != nil {
		t.err = sferrors.Message(err)
	} else {
		t.err = ""
	}
	return true
}

// Fail records a validation failure that never reached the backend
func (t *Tracker) Fail(err error) {
	t.err = sferrors.Message(err)
}

// Loading reports whether any request is outstanding
func (t *Tracker) Loading() bool {
	return t.pending > 0
}

// Err returns the message of the latest failure, or ""
func (t *Tracker) Err() string {
	return t.err
}
