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


package blob

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Open maps the file at path read only. The mapping and the file stay open
// until the last reference to the blob is dropped. An empty file yields Empty.
// On failure Open returns Empty and the error.
func (a *Allocator) Open(path string) (*Blob, error) {
	f, err := os.Open(path)
	if err != nil {
		return Empty(), errors.WithStack(err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return Empty(), errors.WithStack(err)
	}
	if info.Size() == 0 {
		_ = f.Close()
		return Empty(), nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return Empty(), errors.Wrapf(err, "mmap %s failed", path)
	}
	return a.newBlob(m, func() error {
		if err := m.Unmap(); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "unmap %s failed", path)
		}
		return errors.WithStack(f.Close())
	}, ".mmap"), nil
}
