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


// Package leak tracks live reference counted objects so that the ones never
// destroyed can be listed once a workload is over.
package leak

import (
	"sync"
	"time"

	"github.com/akzj/refobj/pkg/ref"
	"github.com/google/btree"
)

type Record struct {
	ref.Info
	Created time.Time
}

func (r Record) Less(than btree.Item) bool {
	return r.ID < than.(Record).ID
}

// Tracker is a ref.Observer keeping every live object ordered by ID.
type Tracker struct {
	l      sync.Mutex
	live   *btree.BTree
	faults int
}

var _ ref.Observer = (*Tracker)(nil)

func NewTracker() *Tracker {
	return &Tracker{
		live: btree.New(32),
	}
}

func (t *Tracker) ObjectCreated(info ref.Info) {
	t.l.Lock()
	t.live.ReplaceOrInsert(Record{Info: info, Created: time.Now()})
	t.l.Unlock()
}

func (t *Tracker) ObjectDestroyed(info ref.Info) {
	t.l.Lock()
	t.live.Delete(Record{Info: info})
	t.l.Unlock()
}

func (t *Tracker) LifecycleFault(info ref.Info, err error) {
	t.l.Lock()
	t.faults++
	t.l.Unlock()
}

// Live returns the objects created and not yet destroyed, oldest first.
func (t *Tracker) Live() []Record {
	t.l.Lock()
	defer t.l.Unlock()
	records := make([]Record, 0, t.live.Len())
	t.live.Ascend(func(item btree.Item) bool {
		records = append(records, item.(Record))
		return true
	})
	return records
}

func (t *Tracker) Len() int {
	t.l.Lock()
	defer t.l.Unlock()
	return t.live.Len()
}

func (t *Tracker) Faults() int {
	t.l.Lock()
	defer t.l.Unlock()
	return t.faults
}

func (t *Tracker) Reset() {
	t.l.Lock()
	t.live = btree.New(32)
	t.faults = 0
	t.l.Unlock()
}
