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


//go:build tracing
// +build tracing

package ref

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
)

// refTrace keeps a stack for every init, retain and release so that a fault
// can show how the count got there.
type refTrace struct {
	sync.Mutex
	msgs []string
}

func (t *refTrace) record(op Op, refs int32) {
	s := fmt.Sprintf("%s: refs=%d\n%s", op, refs, debug.Stack())
	t.Lock()
	t.msgs = append(t.msgs, s)
	t.Unlock()
}

func (t *refTrace) traces() string {
	t.Lock()
	s := strings.Join(t.msgs, "\n")
	t.Unlock()
	return s
}
