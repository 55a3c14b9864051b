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

type Options struct {
	// Kind labels the object in logs, faults and Observer events.
	Kind     string   `json:"kind"`
	Observer Observer `json:"-"`
}

func DefaultOptions() Options {
	return Options{
		Kind:     "object",
		Observer: nil,
	}
}

//WithKind
func (opt Options) WithKind(val string) Options {
	opt.Kind = val
	return opt
}

//WithObserver
func (opt Options) WithObserver(val Observer) Options {
	opt.Observer = val
	return opt
}
