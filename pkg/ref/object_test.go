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
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type font struct {
	name  string
	scale float64
}

func TestObject(t *testing.T) {
	t.Run("scenario", func(t *testing.T) {
		var destroyed int
		obj, err := Create(func() (*font, error) {
			return &font{name: "sans"}, nil
		}, func(f *font) {
			assert.Equal(t, "sans", f.name)
			destroyed++
		})
		assert.NoError(t, err)
		assert.Equal(t, int32(1), obj.Count())
		assert.True(t, obj == obj.Retain())
		assert.Equal(t, int32(2), obj.Count())
		obj.Release()
		assert.Equal(t, int32(1), obj.Count())
		assert.Equal(t, 0, destroyed)
		assert.Equal(t, "sans", obj.Value().name)
		obj.Release()
		assert.Equal(t, int32(0), obj.Count())
		assert.Equal(t, 1, destroyed)
		assert.Nil(t, obj.Value())
	})

	t.Run("retainN", func(t *testing.T) {
		for _, n := range []int{0, 1, 7, 100} {
			destroyed := 0
			obj := New(func(*font) { destroyed++ })
			for i := 0; i < n; i++ {
				obj.Retain()
			}
			for i := 0; i < n; i++ {
				obj.Release()
				assert.Equal(t, 0, destroyed)
			}
			assert.Equal(t, int32(1), obj.Count())
			obj.Release()
			assert.Equal(t, 1, destroyed)
		}
	})

	t.Run("zeroed", func(t *testing.T) {
		obj := New[font](nil)
		assert.Equal(t, font{}, *obj.Value())
		obj.Release()
	})

	t.Run("allocFailed", func(t *testing.T) {
		cause := errors.New("out of memory")
		obj, err := Create(func() (*font, error) {
			return nil, cause
		}, func(*font) {
			t.Fatal("destroy on failed alloc")
		})
		assert.Nil(t, obj)
		assert.True(t, errors.Is(err, ErrAllocFailed))
		assert.True(t, errors.Is(err, cause))
		assert.Equal(t, int32(0), obj.Count())

		obj, err = Create(func() (*font, error) { return nil, nil }, nil)
		assert.Nil(t, obj)
		assert.True(t, errors.Is(err, ErrAllocFailed))

		obj, err = Create[font](nil, nil)
		assert.Nil(t, obj)
		assert.True(t, errors.Is(err, ErrAllocFailed))
	})

	t.Run("nil", func(t *testing.T) {
		var obj *Object[font]
		assert.Nil(t, obj.Retain())
		obj.Release()
		assert.Equal(t, int32(0), obj.Count())
		assert.Nil(t, obj.Value())
		assert.False(t, obj.IsInert())
		assert.Equal(t, Info{}, obj.Info())
	})

	t.Run("kind", func(t *testing.T) {
		r := &recorder{}
		obj, err := CreateWithOptions(func() (*font, error) {
			return &font{}, nil
		}, nil, DefaultOptions().WithKind("font").WithObserver(r))
		assert.NoError(t, err)
		assert.Equal(t, "font", obj.Info().Kind)
		obj.Release()
		assert.Equal(t, []Info{obj.Info()}, r.destroyed)
	})
}

func TestObjectInert(t *testing.T) {
	fallback := &font{name: "fallback"}
	obj := NewInert(fallback)
	assert.True(t, obj.IsInert())
	assert.True(t, fallback == obj.Value())

	const workers = 8
	const iterations = 1000
	var wg sync.WaitGroup
	var bad int32
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				obj.Retain()
				if obj.Count() != 0 {
					atomic.AddInt32(&bad, 1)
				}
			}
			for i := 0; i < iterations; i++ {
				obj.Release()
				if obj.Count() != 0 {
					atomic.AddInt32(&bad, 1)
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(0), bad)
	assert.Equal(t, int32(0), obj.Count())
	assert.True(t, fallback == obj.Value())
}

func TestObjectConcurrent(t *testing.T) {
	const workers = 32
	var destroyed int32
	obj := New(func(*font) { atomic.AddInt32(&destroyed, 1) })

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		held := obj.Retain()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				held.Retain()
				held.Release()
			}
			assert.Equal(t, int32(0), atomic.LoadInt32(&destroyed))
			held.Release()
		}()
	}
	obj.Release()
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&destroyed))
}

func TestCountIsSnapshot(t *testing.T) {
	obj := New[font](nil)
	seen := obj.Count()
	done := make(chan struct{})
	go func() {
		obj.Retain()
		close(done)
	}()
	<-done
	// seen was accurate when read and is stale now.
	assert.Equal(t, int32(1), seen)
	assert.Equal(t, int32(2), obj.Count())
	obj.Release()
	obj.Release()
}

func TestSingleton(t *testing.T) {
	calls := int32(0)
	s := NewSingleton(func() *font {
		atomic.AddInt32(&calls, 1)
		return &font{name: "empty"}
	})
	var wg sync.WaitGroup
	got := make([]*Object[font], 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = s.Get()
			got[i].Retain()
			got[i].Release()
			got[i].Release()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls)
	for _, obj := range got {
		assert.True(t, obj == got[0])
	}
	assert.True(t, got[0].IsInert())
	assert.Equal(t, "empty", got[0].Value().name)

	var zero Singleton[font]
	assert.NotNil(t, zero.Get().Value())
	assert.True(t, zero.Get().IsInert())
}
