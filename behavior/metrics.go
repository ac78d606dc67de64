/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package behavior

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"dirpx.dev/rdx/apis"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

// NewMetrics decorates next with counters registered on r:
// rdx_registrations_total{result}, rdx_unregistrations_total and
// rdx_descriptors_created_total{result}. Counters already registered on r
// by an earlier call are reused.
func NewMetrics(next apis.Behavior, r prometheus.Registerer) (apis.Behavior, error) {
	m := &metricsBehavior{next: next}
	var err error
	if m.registrations, err = counterVec(r, prometheus.CounterOpts{
		Name: "rdx_registrations_total",
		Help: "Total number of type registrations by result",
	}, "result"); err != nil {
		return nil, err
	}
	if m.descriptors, err = counterVec(r, prometheus.CounterOpts{
		Name: "rdx_descriptors_created_total",
		Help: "Total number of descriptors created by result",
	}, "result"); err != nil {
		return nil, err
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rdx_unregistrations_total",
		Help: "Total number of type unregistrations",
	})
	if err := r.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(prometheus.Counter)
		if !ok {
			return nil, alreadyRegistered("rdx_unregistrations_total", are.ExistingCollector)
		}
		c = existing
	}
	m.unregistrations = c
	return m, nil
}

func counterVec(r prometheus.Registerer, opts prometheus.CounterOpts, labels ...string) (*prometheus.CounterVec, error) {
	c := prometheus.NewCounterVec(opts, labels)
	if err := r.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, alreadyRegistered(opts.Name, are.ExistingCollector)
		}
		return existing, nil
	}
	return c, nil
}

func alreadyRegistered(name string, c prometheus.Collector) error {
	return fmt.Errorf("rdx(behavior): %s already registered as %T", name, c)
}

type metricsBehavior struct {
	next            apis.Behavior
	registrations   *prometheus.CounterVec
	unregistrations prometheus.Counter
	descriptors     *prometheus.CounterVec
}

var _ apis.Behavior = (*metricsBehavior)(nil)

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}

func (b *metricsBehavior) Register(r apis.Registration) error {
	err := b.next.Register(r)
	b.registrations.WithLabelValues(result(err)).Inc()
	return err
}

func (b *metricsBehavior) Unregister(name string) error {
	err := b.next.Unregister(name)
	if err == nil {
		b.unregistrations.Inc()
	}
	return err
}

func (b *metricsBehavior) CreateDescriptor(spec apis.DescriptorSpec) (apis.Descriptor, error) {
	d, err := b.next.CreateDescriptor(spec)
	b.descriptors.WithLabelValues(result(err)).Inc()
	return d, err
}
