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


// Package refmetrics exports reference count lifecycle events to prometheus.
package refmetrics

import (
	"github.com/akzj/refobj/pkg/ref"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector is both a ref.Observer and a prometheus.Collector. Register it
// with a registry and pass it as the Observer of the objects to watch.
type Collector struct {
	created   *prometheus.CounterVec
	destroyed *prometheus.CounterVec
	faults    *prometheus.CounterVec
	live      *prometheus.GaugeVec
}

var _ ref.Observer = (*Collector)(nil)
var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(namespace string) *Collector {
	return &Collector{
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_created_total",
			Help:      "Number of reference counted objects created.",
		}, []string{"kind"}),
		destroyed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_destroyed_total",
			Help:      "Number of reference counted objects destroyed.",
		}, []string{"kind"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_faults_total",
			Help:      "Number of reference count misuses detected.",
		}, []string{"kind"}),
		live: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "objects_live",
			Help:      "Number of reference counted objects not yet destroyed.",
		}, []string{"kind"}),
	}
}

func (c *Collector) ObjectCreated(info ref.Info) {
	c.created.WithLabelValues(info.Kind).Inc()
	c.live.WithLabelValues(info.Kind).Inc()
}

func (c *Collector) ObjectDestroyed(info ref.Info) {
	c.destroyed.WithLabelValues(info.Kind).Inc()
	c.live.WithLabelValues(info.Kind).Dec()
}

func (c *Collector) LifecycleFault(info ref.Info, err error) {
	c.faults.WithLabelValues(info.Kind).Inc()
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.created.Describe(ch)
	c.destroyed.Describe(ch)
	c.faults.Describe(ch)
	c.live.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.created.Collect(ch)
	c.destroyed.Collect(ch)
	c.faults.Collect(ch)
	c.live.Collect(ch)
}
