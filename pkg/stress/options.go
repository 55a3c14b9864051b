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


package stress

import (
	"context"
	"runtime"

	"github.com/akzj/refobj/pkg/ref"
)

type Options struct {
	Ctx        context.Context
	Workers    int          `json:"workers"`
	Iterations int          `json:"iterations"`
	Inert      bool         `json:"inert"`
	ChunkSize  int          `json:"chunk_size"`
	Observer   ref.Observer `json:"-"`
}

func DefaultOptions() Options {
	return Options{
		Ctx:        context.Background(),
		Workers:    runtime.NumCPU(),
		Iterations: 10000,
		Inert:      false,
		ChunkSize:  4 * 1024,
		Observer:   nil,
	}
}

func (opt Options) WithCtx(val context.Context) Options {
	opt.Ctx = val
	return opt
}

//WithWorkers
func (opt Options) WithWorkers(val int) Options {
	opt.Workers = val
	return opt
}

//WithIterations
func (opt Options) WithIterations(val int) Options {
	opt.Iterations = val
	return opt
}

//WithInert
func (opt Options) WithInert(val bool) Options {
	opt.Inert = val
	return opt
}

//WithChunkSize
func (opt Options) WithChunkSize(val int) Options {
	opt.ChunkSize = val
	return opt
}

//WithObserver
func (opt Options) WithObserver(val ref.Observer) Options {
	opt.Observer = val
	return opt
}

func (opt Options) validate() error {
	if opt.Workers < 1 {
		return ErrWorkers
	}
	if opt.Iterations < 0 {
		return ErrIterations
	}
	if opt.ChunkSize < 1 {
		return ErrChunkSize
	}
	return nil
}
