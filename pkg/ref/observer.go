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

// Info identifies one reference counted object for an Observer.
type Info struct {
	ID   uint64
	Kind string
}

// Observer receives lifecycle events of live objects. Inert objects never
// produce events. Implementations must be safe for concurrent use; callbacks
// run synchronously on the goroutine performing the operation.
type Observer interface {
	ObjectCreated(info Info)
	ObjectDestroyed(info Info)
	LifecycleFault(info Info, err error)
}

type multiObserver []Observer

// MultiObserver fans events out to every non-nil observer in order.
func MultiObserver(observers ...Observer) Observer {
	var m multiObserver
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}

func (m multiObserver) ObjectCreated(info Info) {
	for _, o := range m {
		o.ObjectCreated(info)
	}
}

func (m multiObserver) ObjectDestroyed(info Info) {
	for _, o := range m {
		o.ObjectDestroyed(info)
	}
}

func (m multiObserver) LifecycleFault(info Info, err error) {
	for _, o := range m {
		o.LifecycleFault(info, err)
	}
}
