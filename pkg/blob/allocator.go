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


package blob

import (
	"github.com/akzj/refobj/pkg/ref"
)

type Options struct {
	Kind     string       `json:"kind"`
	Observer ref.Observer `json:"-"`
}

func DefaultOptions() Options {
	return Options{
		Kind:     "blob",
		Observer: nil,
	}
}

//WithKind
func (opt Options) WithKind(val string) Options {
	opt.Kind = val
	return opt
}

//WithObserver
func (opt Options) WithObserver(val ref.Observer) Options {
	opt.Observer = val
	return opt
}

// Allocator creates blobs that share a kind and an observer.
type Allocator struct {
	opts Options
}

var defaultAllocator = NewAllocator(DefaultOptions())

func NewAllocator(opts Options) *Allocator {
	if opts.Kind == "" {
		opts.Kind = DefaultOptions().Kind
	}
	return &Allocator{opts: opts}
}

func (a *Allocator) New(data []byte) *Blob {
	if len(data) == 0 {
		return Empty()
	}
	return a.newBlob(append([]byte(nil), data...), nil, "")
}

func (a *Allocator) Wrap(data []byte, release func() error) *Blob {
	if len(data) == 0 {
		if release != nil {
			_ = release()
		}
		return Empty()
	}
	return a.newBlob(data, release, "")
}

func (a *Allocator) newBlob(data []byte, release func() error, suffix string) *Blob {
	b := &Blob{
		alloc:   a,
		data:    data,
		release: release,
	}
	b.rc.InitWithOptions(a.refOptions(suffix))
	return b
}

func (a *Allocator) refOptions(suffix string) ref.Options {
	opts := DefaultOptions()
	if a != nil {
		opts = a.opts
	}
	return ref.DefaultOptions().
		WithKind(opts.Kind + suffix).
		WithObserver(opts.Observer)
}
