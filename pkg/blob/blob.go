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


// Package blob provides immutable, reference counted byte buffers.
//
// A Blob is shared by calling Reference and dropped by calling Destroy. The
// last Destroy releases whatever backs it: a file mapping, a caller supplied
// release callback, or the parent of a sub-blob. Constructors never return
// nil; when there is nothing to hold they return Empty, the process wide inert
// blob, which ignores Reference and Destroy.
package blob

import (
	"github.com/akzj/refobj/pkg/ref"
	log "github.com/sirupsen/logrus"
)

type Blob struct {
	rc      ref.RefCount
	alloc   *Allocator
	data    []byte
	parent  *Blob
	release func() error
}

var empty = newEmpty()

func newEmpty() *Blob {
	b := &Blob{data: []byte{}}
	b.rc.MarkInert()
	return b
}

// Empty returns the inert zero length blob.
func Empty() *Blob {
	return empty
}

// New copies data into a new blob.
func New(data []byte) *Blob {
	return defaultAllocator.New(data)
}

// Wrap makes a blob over data without copying. release, if not nil, runs when
// the last reference is dropped; data must stay unmodified until then.
func Wrap(data []byte, release func() error) *Blob {
	return defaultAllocator.Wrap(data, release)
}

// Open maps the file at path read only.
func Open(path string) (*Blob, error) {
	return defaultAllocator.Open(path)
}

// Reference adds a reference and returns b.
func (b *Blob) Reference() *Blob {
	if b == nil {
		return nil
	}
	b.rc.Retain()
	return b
}

// Destroy drops a reference.
func (b *Blob) Destroy() {
	if b == nil || !b.rc.Release() {
		return
	}
	if b.release != nil {
		if err := b.release(); err != nil {
			log.WithField("kind", b.rc.Kind()).
				WithField("id", b.rc.ID()).
				Error(err)
		}
		b.release = nil
	}
	if b.parent != nil {
		b.parent.Destroy()
		b.parent = nil
	}
	b.data = nil
}

// Sub returns a blob over length bytes of b starting at offset, holding a
// reference to b. length is clamped to the end of b.
func (b *Blob) Sub(offset, length int) *Blob {
	if b == nil || b.rc.IsInert() || offset < 0 || length <= 0 || offset >= len(b.data) {
		return Empty()
	}
	if length > len(b.data)-offset {
		length = len(b.data) - offset
	}
	sub := &Blob{
		alloc:  b.alloc,
		data:   b.data[offset : offset+length : offset+length],
		parent: b.Reference(),
	}
	sub.rc.InitWithOptions(b.alloc.refOptions(".sub"))
	return sub
}

// Bytes returns the content. The slice is only valid while a reference is held
// and must not be modified.
func (b *Blob) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

func (b *Blob) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// RefCount reports the reference count for diagnostics. It is 0 for Empty.
func (b *Blob) RefCount() int32 {
	if b == nil {
		return 0
	}
	return b.rc.Count()
}

func (b *Blob) Info() ref.Info {
	if b == nil {
		return ref.Info{}
	}
	return ref.Info{ID: b.rc.ID(), Kind: b.rc.Kind()}
}

func (b *Blob) IsEmpty() bool {
	return b == nil || b == empty
}
