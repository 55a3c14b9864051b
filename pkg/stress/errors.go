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
	"github.com/pkg/errors"
)

var (
	ErrWorkers          = errors.New("workers must be at least 1")
	ErrIterations       = errors.New("iterations must not be negative")
	ErrChunkSize        = errors.New("chunk size must be at least 1")
	ErrDestroyCount     = errors.New("unexpected destroy count")
	ErrPrematureDestroy = errors.New("destroyed while references were outstanding")
	ErrEmptyFile        = errors.New("file is empty")
)
