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


// Package stress drives reference counted objects from many goroutines and
// checks that each one is destroyed exactly once, after its last release.
package stress

import (
	"context"
	"hash/crc32"
	"sync/atomic"
	"time"

	"github.com/akzj/refobj/pkg/blob"
	"github.com/akzj/refobj/pkg/ref"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// workers check for cancellation every checkEvery iterations
const checkEvery = 64

type Report struct {
	RunID      string
	Kind       string
	Workers    int
	Iterations int
	Retains    int64
	Releases   int64
	Destroyed  int32
	// FinalCount is the count seen after all workers finished and before the
	// creator dropped its reference.
	FinalCount int32
	Bytes      int64
	Checksum   uint32
	Elapsed    time.Duration
}

type payload struct {
	hits int64
}

// tally counts outstanding references next to the real count: incremented
// after a retain, decremented before the matching release.
type tally struct {
	outstanding int64
	retains     int64
	releases    int64
}

func (t *tally) retained() {
	atomic.AddInt64(&t.outstanding, 1)
	atomic.AddInt64(&t.retains, 1)
}

func (t *tally) releasing() {
	atomic.AddInt64(&t.outstanding, -1)
	atomic.AddInt64(&t.releases, 1)
}

// Run creates one object and has every worker take Iterations extra references
// before dropping them all.
func Run(opts Options) (Report, error) {
	if err := opts.validate(); err != nil {
		return Report{}, err
	}
	report := Report{
		RunID:      uuid.New().String(),
		Kind:       "object",
		Workers:    opts.Workers,
		Iterations: opts.Iterations,
	}
	if opts.Inert {
		report.Kind = "inert"
	}
	logger := log.WithField("run", report.RunID).WithField("kind", report.Kind)

	var destroyed int32
	var premature int32
	var t tally
	var obj *ref.Object[payload]
	if opts.Inert {
		obj = ref.NewInert(&payload{})
	} else {
		var err error
		obj, err = ref.CreateWithOptions(func() (*payload, error) {
			return &payload{}, nil
		}, func(*payload) {
			atomic.AddInt32(&destroyed, 1)
			if atomic.LoadInt64(&t.outstanding) != 0 {
				atomic.AddInt32(&premature, 1)
			}
		}, ref.DefaultOptions().WithKind("stress").WithObserver(opts.Observer))
		if err != nil {
			return report, err
		}
	}
	t.retained()

	begin := time.Now()
	g, ctx := errgroup.WithContext(opts.Ctx)
	for w := 0; w < opts.Workers; w++ {
		held := obj.Retain()
		t.retained()
		g.Go(func() error {
			var taken int
			defer func() {
				for ; taken > 0; taken-- {
					t.releasing()
					held.Release()
				}
				t.releasing()
				held.Release()
			}()
			for i := 0; i < opts.Iterations; i++ {
				if err := ctxErr(ctx, i); err != nil {
					return err
				}
				held.Retain()
				t.retained()
				taken++
				atomic.AddInt64(&held.Value().hits, 1)
			}
			return nil
		})
	}
	err := g.Wait()
	report.FinalCount = obj.Count()
	t.releasing()
	obj.Release()
	report.Elapsed = time.Since(begin)
	report.Retains = atomic.LoadInt64(&t.retains)
	report.Releases = atomic.LoadInt64(&t.releases)
	report.Destroyed = atomic.LoadInt32(&destroyed)
	logger.WithField("elapsed", report.Elapsed).
		WithField("retains", report.Retains).
		Info("run finished")
	if err != nil {
		return report, err
	}
	if atomic.LoadInt32(&premature) != 0 {
		return report, errors.WithStack(ErrPrematureDestroy)
	}
	want := int32(1)
	if opts.Inert {
		want = 0
	}
	if report.Destroyed != want {
		return report, errors.WithMessagef(ErrDestroyCount, "destroyed %d times, want %d",
			report.Destroyed, want)
	}
	return report, nil
}

// destroyCounter counts destroy events of one kind.
type destroyCounter struct {
	kind    string
	created int32
	count   int32
}

func (d *destroyCounter) ObjectCreated(info ref.Info) {
	if info.Kind == d.kind {
		atomic.AddInt32(&d.created, 1)
	}
}

func (d *destroyCounter) ObjectDestroyed(info ref.Info) {
	if info.Kind == d.kind {
		atomic.AddInt32(&d.count, 1)
	}
}

func (d *destroyCounter) LifecycleFault(ref.Info, error) {}

// RunBlob maps the file at path and has every worker cut Iterations sub-blobs
// of ChunkSize bytes out of it. The mapping must be released once, when the
// last sub-blob and the creator's reference are gone.
func RunBlob(path string, opts Options) (Report, error) {
	if err := opts.validate(); err != nil {
		return Report{}, err
	}
	report := Report{
		RunID:      uuid.New().String(),
		Kind:       "blob",
		Workers:    opts.Workers,
		Iterations: opts.Iterations,
	}
	logger := log.WithField("run", report.RunID).WithField("path", path)

	mmaps := &destroyCounter{kind: "blob.mmap"}
	subs := &destroyCounter{kind: "blob.sub"}
	alloc := blob.NewAllocator(blob.DefaultOptions().
		WithObserver(ref.MultiObserver(opts.Observer, mmaps, subs)))
	file, err := alloc.Open(path)
	if err != nil {
		return report, err
	}
	if file.IsEmpty() {
		return report, errors.WithMessage(ErrEmptyFile, path)
	}

	var bytes int64
	var checksum uint32
	begin := time.Now()
	g, ctx := errgroup.WithContext(opts.Ctx)
	for w := 0; w < opts.Workers; w++ {
		w := w
		g.Go(func() error {
			var sum uint32
			for i := 0; i < opts.Iterations; i++ {
				if err := ctxErr(ctx, i); err != nil {
					return err
				}
				offset := ((w*opts.Iterations + i) * opts.ChunkSize) % file.Len()
				sub := file.Sub(offset, opts.ChunkSize)
				sum ^= crc32.ChecksumIEEE(sub.Bytes())
				atomic.AddInt64(&bytes, int64(sub.Len()))
				sub.Destroy()
			}
			for {
				old := atomic.LoadUint32(&checksum)
				if atomic.CompareAndSwapUint32(&checksum, old, old^sum) {
					return nil
				}
			}
		})
	}
	err = g.Wait()
	report.FinalCount = file.RefCount()
	file.Destroy()
	report.Elapsed = time.Since(begin)
	report.Bytes = atomic.LoadInt64(&bytes)
	report.Checksum = atomic.LoadUint32(&checksum)
	report.Retains = int64(atomic.LoadInt32(&subs.created))
	report.Releases = int64(atomic.LoadInt32(&subs.count))
	report.Destroyed = atomic.LoadInt32(&mmaps.count)
	logger.WithField("elapsed", report.Elapsed).
		WithField("bytes", report.Bytes).
		Info("run finished")
	if err != nil {
		return report, err
	}
	if report.Destroyed != 1 || report.Retains != report.Releases {
		return report, errors.WithMessagef(ErrDestroyCount,
			"mapping destroyed %d times, %d of %d sub-blobs destroyed",
			report.Destroyed, report.Releases, report.Retains)
	}
	return report, nil
}

func ctxErr(ctx context.Context, i int) error {
	if i%checkEvery != 0 {
		return nil
	}
	return errors.WithStack(ctx.Err())
}
