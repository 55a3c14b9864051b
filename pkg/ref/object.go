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
	"sync"

	"github.com/pkg/errors"
)

// Object is a reference counted handle to a *T payload. A nil *Object is a
// valid null handle: every method on it is a no-op.
type Object[T any] struct {
	rc      RefCount
	value   *T
	destroy func(*T)
}

// Create allocates the payload with alloc and returns a handle holding the
// single owning reference. If alloc fails, or returns a nil payload, Create
// returns a nil handle and an error matching ErrAllocFailed.
func Create[T any](alloc func() (*T, error), destroy func(*T)) (*Object[T], error) {
	return CreateWithOptions(alloc, destroy, DefaultOptions())
}

func CreateWithOptions[T any](alloc func() (*T, error), destroy func(*T), opts Options) (*Object[T], error) {
	if alloc == nil {
		return nil, errors.WithMessage(ErrAllocFailed, "nil allocator")
	}
	value, err := alloc()
	if err != nil {
		return nil, errors.WithStack(&allocError{cause: err})
	}
	if value == nil {
		return nil, errors.WithStack(ErrAllocFailed)
	}
	obj := &Object[T]{
		value:   value,
		destroy: destroy,
	}
	obj.rc.InitWithOptions(opts)
	return obj, nil
}

// New creates an object around a zeroed T.
func New[T any](destroy func(*T)) *Object[T] {
	obj, _ := Create(func() (*T, error) {
		return new(T), nil
	}, destroy)
	return obj
}

// NewInert returns an object that is never counted and never destroyed.
func NewInert[T any](value *T) *Object[T] {
	obj := &Object[T]{value: value}
	obj.rc.MarkInert()
	return obj
}

func (obj *Object[T]) Retain() *Object[T] {
	if obj == nil {
		return nil
	}
	obj.rc.Retain()
	return obj
}

// Release drops one reference. The release that drops the last one runs the
// destroy callback before returning.
func (obj *Object[T]) Release() {
	if obj == nil {
		return
	}
	if !obj.rc.Release() {
		return
	}
	value := obj.value
	obj.value = nil
	if obj.destroy != nil {
		obj.destroy(value)
	}
}

// Count is diagnostic only, see RefCount.Count.
func (obj *Object[T]) Count() int32 {
	if obj == nil {
		return 0
	}
	return obj.rc.Count()
}

func (obj *Object[T]) IsInert() bool {
	return obj != nil && obj.rc.IsInert()
}

func (obj *Object[T]) Value() *T {
	if obj == nil {
		return nil
	}
	return obj.value
}

func (obj *Object[T]) Info() Info {
	if obj == nil {
		return Info{}
	}
	return obj.rc.info()
}

// Singleton holds a process wide inert object, built on first use and never
// torn down.
type Singleton[T any] struct {
	once sync.Once
	init func() *T
	obj  *Object[T]
}

func NewSingleton[T any](init func() *T) *Singleton[T] {
	return &Singleton[T]{init: init}
}

func (s *Singleton[T]) Get() *Object[T] {
	s.once.Do(func() {
		var value *T
		if s.init != nil {
			value = s.init()
		}
		if value == nil {
			value = new(T)
		}
		s.obj = NewInert(value)
	})
	return s.obj
}
