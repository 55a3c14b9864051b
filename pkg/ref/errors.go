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


package ref

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrAllocFailed = errors.New("allocation failed")
	ErrNotLive     = errors.New("reference count not live")
	ErrOverflow    = errors.New("reference count overflow")
	ErrInitialized = errors.New("reference count already initialized")
)

// Op names the lifecycle operation that detected a fault.
type Op string

const (
	OpInit      Op = "init"
	OpMarkInert Op = "mark_inert"
	OpRetain    Op = "retain"
	OpRelease   Op = "release"
)

// LifecycleError describes a misuse of a reference count. It is never returned,
// only raised with panic after being logged and reported to the Observer.
type LifecycleError struct {
	Op    Op
	Count int32
	ID    uint64
	Kind  string
	Err   error
}

func (e *LifecycleError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "object"
	}
	return fmt.Sprintf("%s %s#%d: %s (count %d)", e.Op, kind, e.ID, e.Err, e.Count)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

type allocError struct {
	cause error
}

func (e *allocError) Error() string {
	return ErrAllocFailed.Error() + ": " + e.cause.Error()
}

func (e *allocError) Unwrap() error {
	return e.cause
}

func (e *allocError) Is(target error) bool {
	return target == ErrAllocFailed
}
