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
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu        sync.Mutex
	created   []Info
	destroyed []Info
	faults    []error
}

func (r *recorder) ObjectCreated(info Info) {
	r.mu.Lock()
	r.created = append(r.created, info)
	r.mu.Unlock()
}

func (r *recorder) ObjectDestroyed(info Info) {
	r.mu.Lock()
	r.destroyed = append(r.destroyed, info)
	r.mu.Unlock()
}

func (r *recorder) LifecycleFault(info Info, err error) {
	r.mu.Lock()
	r.faults = append(r.faults, err)
	r.mu.Unlock()
}

func catchFault(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	fn()
	return nil
}

func TestRefCount(t *testing.T) {
	t.Run("lifecycle", func(t *testing.T) {
		var rc RefCount
		assert.Equal(t, int32(0), rc.Count())
		rc.Init()
		assert.Equal(t, int32(1), rc.Count())
		rc.Retain()
		assert.Equal(t, int32(2), rc.Count())
		assert.False(t, rc.Release())
		assert.Equal(t, int32(1), rc.Count())
		assert.True(t, rc.Release())
		assert.Equal(t, int32(0), rc.Count())
	})

	t.Run("nil", func(t *testing.T) {
		var rc *RefCount
		rc.Retain()
		assert.False(t, rc.Release())
		assert.Equal(t, int32(0), rc.Count())
		assert.False(t, rc.IsInert())
		assert.Equal(t, uint64(0), rc.ID())
	})

	t.Run("inert", func(t *testing.T) {
		var rc RefCount
		rc.MarkInert()
		assert.True(t, rc.IsInert())
		for i := 0; i < 10; i++ {
			rc.Retain()
		}
		for i := 0; i < 20; i++ {
			assert.False(t, rc.Release())
		}
		assert.Equal(t, int32(0), rc.Count())
		assert.Equal(t, int32(0), atomic.LoadInt32(&rc.n))
	})

	t.Run("retainUninitialized", func(t *testing.T) {
		var rc RefCount
		err := catchFault(rc.Retain)
		assert.True(t, errors.Is(err, ErrNotLive))
		assert.Equal(t, int32(0), rc.Count())
	})

	t.Run("releaseDead", func(t *testing.T) {
		var rc RefCount
		rc.Init()
		assert.True(t, rc.Release())
		err := catchFault(func() { rc.Release() })
		assert.True(t, errors.Is(err, ErrNotLive))
		var lerr *LifecycleError
		if assert.True(t, errors.As(err, &lerr)) {
			assert.Equal(t, OpRelease, lerr.Op)
			assert.Equal(t, int32(0), lerr.Count)
			assert.Equal(t, rc.ID(), lerr.ID)
		}
		assert.Equal(t, int32(0), rc.Count())
	})

	t.Run("retainDead", func(t *testing.T) {
		var rc RefCount
		rc.Init()
		assert.True(t, rc.Release())
		err := catchFault(rc.Retain)
		assert.True(t, errors.Is(err, ErrNotLive))
		assert.Equal(t, int32(0), rc.Count())
	})

	t.Run("initTwice", func(t *testing.T) {
		var rc RefCount
		rc.Init()
		err := catchFault(rc.Init)
		assert.True(t, errors.Is(err, ErrInitialized))
		assert.Equal(t, int32(1), rc.Count())
	})

	t.Run("markInertTwice", func(t *testing.T) {
		var rc RefCount
		rc.MarkInert()
		err := catchFault(rc.MarkInert)
		assert.True(t, errors.Is(err, ErrInitialized))
		assert.True(t, rc.IsInert())
	})

	t.Run("markInertLive", func(t *testing.T) {
		var rc RefCount
		rc.Init()
		err := catchFault(rc.MarkInert)
		assert.True(t, errors.Is(err, ErrInitialized))
		assert.False(t, rc.IsInert())
		assert.Equal(t, int32(1), rc.Count())
	})

	t.Run("overflow", func(t *testing.T) {
		var rc RefCount
		rc.Init()
		atomic.StoreInt32(&rc.n, math.MaxInt32)
		err := catchFault(rc.Retain)
		assert.True(t, errors.Is(err, ErrOverflow))
		assert.Equal(t, int32(math.MaxInt32), rc.Count())
		assert.False(t, rc.IsInert())
	})
}

func TestRefCountObserver(t *testing.T) {
	r := &recorder{}
	var rc RefCount
	rc.InitWithOptions(DefaultOptions().WithKind("segment").WithObserver(r))
	rc.Retain()
	rc.Release()
	assert.Len(t, r.created, 1)
	assert.Len(t, r.destroyed, 0)
	rc.Release()
	assert.Len(t, r.destroyed, 1)
	assert.Equal(t, Info{ID: rc.ID(), Kind: "segment"}, r.destroyed[0])

	assert.Error(t, catchFault(func() { rc.Release() }))
	assert.Len(t, r.faults, 1)
	assert.True(t, errors.Is(r.faults[0], ErrNotLive))

	var inert RefCount
	inert.MarkInert()
	inert.Retain()
	inert.Release()
	assert.Len(t, r.created, 1)
	assert.Len(t, r.destroyed, 1)
}

func TestRefCountIDs(t *testing.T) {
	var a, b RefCount
	a.Init()
	b.Init()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "object", a.Kind())
}

func TestMultiObserver(t *testing.T) {
	assert.Nil(t, MultiObserver())
	assert.Nil(t, MultiObserver(nil, nil))

	r1 := &recorder{}
	assert.Equal(t, Observer(r1), MultiObserver(nil, r1))

	r2 := &recorder{}
	var rc RefCount
	rc.InitWithOptions(DefaultOptions().WithObserver(MultiObserver(r1, r2)))
	rc.Release()
	for _, r := range []*recorder{r1, r2} {
		assert.Len(t, r.created, 1)
		assert.Len(t, r.destroyed, 1)
	}
}

func TestRefCountConcurrent(t *testing.T) {
	t.Run("retainRelease", func(t *testing.T) {
		const workers = 64
		const iterations = 1000
		var rc RefCount
		rc.Init()
		var zero int32
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < iterations; i++ {
					rc.Retain()
				}
				for i := 0; i < iterations; i++ {
					if rc.Release() {
						atomic.AddInt32(&zero, 1)
					}
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(0), atomic.LoadInt32(&zero))
		assert.Equal(t, int32(1), rc.Count())
		assert.True(t, rc.Release())
	})

	t.Run("racingLastRelease", func(t *testing.T) {
		for round := 0; round < 1000; round++ {
			var rc RefCount
			rc.Init()
			rc.Retain()
			var zero int32
			var wg sync.WaitGroup
			start := make(chan struct{})
			for w := 0; w < 2; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					if rc.Release() {
						atomic.AddInt32(&zero, 1)
					}
				}()
			}
			close(start)
			wg.Wait()
			if !assert.Equal(t, int32(1), zero, "round %d", round) {
				return
			}
		}
	})
}
