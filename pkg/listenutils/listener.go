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


package listenutils

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// Listen opens a TCP listener on addr, wrapped in TLS when tlsConfig is set.
func Listen(addr string, tlsConfig *tls.Config) (net.Listener, error) {
	if tlsConfig == nil {
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			log.WithField("addr", addr).Error(err)
			return nil, errors.WithStack(err)
		}
		return listener, nil
	}
	listener, err := tls.Listen("tcp", addr, tlsConfig)
	if err != nil {
		log.WithField("tls.addr", addr).Error(err)
		return nil, errors.WithStack(err)
	}
	return listener, nil
}

// Serve runs handler on listener until ctx is done, then shuts the server
// down. It returns nil after a shutdown triggered by ctx.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler) error {
	server := &http.Server{Handler: handler}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	select {
	case err := <-errCh:
		return errors.WithStack(err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.WithStack(err)
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return errors.WithStack(err)
	}
	return nil
}
