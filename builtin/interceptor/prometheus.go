/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package interceptor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsCollector exports the counters of a Metrics interceptor, labelled by method.
type metricsCollector struct {
	m        *Metrics
	inFlight *prometheus.Desc
	calls    *prometheus.Desc
	failed   *prometheus.Desc
	seconds  *prometheus.Desc
}

// NewPrometheusCollector returns a collector of m, to be registered with a prometheus registry.
// Metric names are prefixed with namespace.
func NewPrometheusCollector(namespace string, m *Metrics) prometheus.Collector {
	labels := []string{"method"}
	return &metricsCollector{
		m: m,
		inFlight: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "calls_in_flight"),
			"Number of intercepted calls in flight.", labels, nil),
		calls: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "calls_total"),
			"Total number of intercepted calls.", labels, nil),
		failed: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "calls_failed_total"),
			"Number of intercepted calls that returned an error.", labels, nil),
		seconds: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "call_seconds_total"),
			"Accumulated duration of completed intercepted calls.", labels, nil),
	}
}

func (c *metricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.inFlight
	ch <- c.calls
	ch <- c.failed
	ch <- c.seconds
}

func (c *metricsCollector) Collect(ch chan<- prometheus.Metric) {
	for method, m := range c.m.MethodMetrics() {
		ch <- prometheus.MustNewConstMetric(c.inFlight, prometheus.GaugeValue, float64(m.Current), method)
		ch <- prometheus.MustNewConstMetric(c.calls, prometheus.CounterValue, float64(m.Total), method)
		ch <- prometheus.MustNewConstMetric(c.failed, prometheus.CounterValue, float64(m.Failed), method)
		ch <- prometheus.MustNewConstMetric(c.seconds, prometheus.CounterValue, time.Duration(m.Nanos).Seconds(), method)
	}
}
