// Copyright 2020-2026 The streamIO Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ref implements the reference count embedded in shared objects.
//
// A RefCount is in one of four states. The zero value is uninitialized; Init
// makes it live with a count of one and MarkInert makes it inert. A live count
// becomes dead when the last reference is released. Inert counts ignore Retain
// and Release for the whole life of the process and are never destroyed.
//
// All operations are lock free. Misuse (retaining or releasing a count that is
// not live, overflowing it, initializing it twice) is a programming error: it
// is logged, reported to the Observer and raised with panic.
package ref

import (
	"math"
	"sync/atomic"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type state uint32

const (
	stateUninit state = iota
	stateLive
	stateDead
	stateInert
)

var nextID uint64

type RefCount struct {
	n     int32
	state uint32

	id       uint64
	kind     string
	observer Observer

	trace refTrace
}

// Init moves rc from uninitialized to live with a count of one.
func (rc *RefCount) Init() {
	rc.InitWithOptions(DefaultOptions())
}

func (rc *RefCount) InitWithOptions(opts Options) {
	if !atomic.CompareAndSwapUint32(&rc.state, uint32(stateUninit), uint32(stateLive)) {
		rc.fault(OpInit, atomic.LoadInt32(&rc.n), ErrInitialized)
	}
	rc.id = atomic.AddUint64(&nextID, 1)
	rc.kind = opts.Kind
	rc.observer = opts.Observer
	atomic.StoreInt32(&rc.n, 1)
	rc.trace.record(OpInit, 1)
	if rc.observer != nil {
		rc.observer.ObjectCreated(rc.info())
	}
}

// MarkInert makes rc exempt from counting. It may only be called once, while
// the object is being constructed and before it is shared.
func (rc *RefCount) MarkInert() {
	if !atomic.CompareAndSwapUint32(&rc.state, uint32(stateUninit), uint32(stateInert)) {
		rc.fault(OpMarkInert, atomic.LoadInt32(&rc.n), ErrInitialized)
	}
}

func (rc *RefCount) IsInert() bool {
	return rc != nil && state(atomic.LoadUint32(&rc.state)) == stateInert
}

// Retain adds a reference. It is a no-op for nil and inert counts.
func (rc *RefCount) Retain() {
	if rc == nil || rc.IsInert() {
		return
	}
	for {
		c := atomic.LoadInt32(&rc.n)
		if c < 1 {
			rc.fault(OpRetain, c, ErrNotLive)
		}
		if c == math.MaxInt32 {
			rc.fault(OpRetain, c, ErrOverflow)
		}
		if atomic.CompareAndSwapInt32(&rc.n, c, c+1) {
			rc.trace.record(OpRetain, c+1)
			return
		}
	}
}

// Release drops a reference. It returns true to exactly one caller: the one
// whose release took the count to zero. That caller must destroy the object
// before returning and no other caller may touch it afterwards. Release is a
// no-op returning false for nil and inert counts.
func (rc *RefCount) Release() bool {
	if rc == nil || rc.IsInert() {
		return false
	}
	for {
		c := atomic.LoadInt32(&rc.n)
		if c < 1 {
			rc.fault(OpRelease, c, ErrNotLive)
		}
		if !atomic.CompareAndSwapInt32(&rc.n, c, c-1) {
			continue
		}
		rc.trace.record(OpRelease, c-1)
		if c != 1 {
			return false
		}
		atomic.StoreUint32(&rc.state, uint32(stateDead))
		if rc.observer != nil {
			rc.observer.ObjectDestroyed(rc.info())
		}
		if log.IsLevelEnabled(log.DebugLevel) {
			log.WithField("kind", rc.kind).WithField("id", rc.id).Debug("destroy")
		}
		return true
	}
}

// Count returns the current number of references, or 0 for nil, inert,
// uninitialized and dead counts. The value is for diagnostics only: it may be
// stale by the time the caller looks at it and must not drive lifecycle
// decisions.
func (rc *RefCount) Count() int32 {
	if rc == nil || rc.IsInert() {
		return 0
	}
	return atomic.LoadInt32(&rc.n)
}

func (rc *RefCount) ID() uint64 {
	if rc == nil {
		return 0
	}
	return rc.id
}

func (rc *RefCount) Kind() string {
	if rc == nil {
		return ""
	}
	return rc.kind
}

func (rc *RefCount) info() Info {
	return Info{ID: rc.id, Kind: rc.kind}
}

func (rc *RefCount) fault(op Op, count int32, cause error) {
	err := errors.WithStack(&LifecycleError{
		Op:    op,
		Count: count,
		ID:    rc.id,
		Kind:  rc.kind,
		Err:   cause,
	})
	entry := log.WithField("op", op).
		WithField("kind", rc.kind).
		WithField("id", rc.id).
		WithField("count", count)
	if traces := rc.trace.traces(); traces != "" {
		entry = entry.WithField("traces", traces)
	}
	entry.Error(err)
	if rc.observer != nil {
		rc.observer.LifecycleFault(rc.info(), err)
	}
	panic(err)
}
